// Package category classifies parsed constructs against the user's ordered
// category rules.
package category

import (
	"fmt"
	"regexp"

	"github.com/dotdex/dotdex/internal/domain"
)

// Matcher evaluates category rules in configuration order. The first rule
// with any matching configured predicate wins; rules with no predicates
// never match.
type Matcher struct {
	rules         []compiledRule
	uncategorized string
}

type compiledRule struct {
	name      string
	nameRe    *regexp.Regexp
	codeRe    *regexp.Regexp
	commentRe *regexp.Regexp
	pathRe    *regexp.Regexp
}

// NewMatcher compiles the configured rules. A regex that fails to compile is
// a configuration error and aborts the run before any store access.
func NewMatcher(rules []domain.CategoryRule, uncategorizedName string, caseSensitive bool) (*Matcher, error) {
	m := &Matcher{uncategorized: uncategorizedName}
	for _, r := range rules {
		cr := compiledRule{name: r.Name}
		var err error
		if cr.nameRe, err = compilePredicate(r.NameRegex, caseSensitive); err != nil {
			return nil, fmt.Errorf("category %q: name_regex %q: %w", r.Name, r.NameRegex, err)
		}
		if cr.codeRe, err = compilePredicate(r.CodeRegex, caseSensitive); err != nil {
			return nil, fmt.Errorf("category %q: code_regex %q: %w", r.Name, r.CodeRegex, err)
		}
		if cr.commentRe, err = compilePredicate(r.CommentRegex, caseSensitive); err != nil {
			return nil, fmt.Errorf("category %q: comment_regex %q: %w", r.Name, r.CommentRegex, err)
		}
		if cr.pathRe, err = compilePredicate(r.PathRegex, caseSensitive); err != nil {
			return nil, fmt.Errorf("category %q: path_regex %q: %w", r.Name, r.PathRegex, err)
		}
		m.rules = append(m.rules, cr)
	}
	return m, nil
}

// CompilePredicate compiles a single user regex, honoring the global case
// sensitivity flag. An empty pattern yields a nil regex.
func CompilePredicate(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	return compilePredicate(pattern, caseSensitive)
}

func compilePredicate(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// Classify assigns a category name to a construct. Deterministic: a pure
// function of the construct, its resolved description, and the rule order.
func (m *Matcher) Classify(c domain.RawConstruct, description string) string {
	for _, r := range m.rules {
		if matches(r.nameRe, c.Name) ||
			matches(r.codeRe, c.Code) ||
			matches(r.commentRe, description) ||
			matches(r.pathRe, c.SourcePath) {
			return r.name
		}
	}
	return m.uncategorized
}

func matches(re *regexp.Regexp, text string) bool {
	return re != nil && text != "" && re.MatchString(text)
}

// Uncategorized returns the configured fallback category name.
func (m *Matcher) Uncategorized() string {
	return m.uncategorized
}
