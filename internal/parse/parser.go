package parse

import (
	"regexp"
	"strings"

	"github.com/dotdex/dotdex/internal/domain"
)

// Parser converts file text into RawConstructs. Malformed constructs are
// skipped silently; a file is never rejected wholesale.
type Parser struct {
	ignoreName *regexp.Regexp
}

// NewParser creates a parser. ignoreName may be nil; constructs whose name
// matches it are dropped before they reach the categorizer.
func NewParser(ignoreName *regexp.Regexp) *Parser {
	return &Parser{ignoreName: ignoreName}
}

// Result is the outcome of parsing one file.
type Result struct {
	Constructs []domain.RawConstruct
	// Skipped counts malformed or ignore-filtered constructs.
	Skipped int
}

// structuredPrefixRe strips a `desc:` / `description -` style prefix from a
// function body comment.
var structuredPrefixRe = regexp.MustCompile(`(?i)^desc(?:ription)?[ \t]*[-:=][ \t]*`)

// parseState is the accumulator threaded through the line scan.
type parseState struct {
	// comment candidate: the most recent preceding comment block, joined.
	pending     []string
	lastComment bool

	// function collection state.
	collecting bool
	awaitBrace bool
	fn         domain.RawConstruct
	body       []string
	depth      int
	quotes     braceState
}

func (st *parseState) takePending() string {
	joined := strings.TrimSpace(strings.Join(st.pending, " "))
	st.pending = nil
	return joined
}

// ParseFile extracts all recognized constructs from the content of one file.
func (p *Parser) ParseFile(path, content string) Result {
	var res Result
	st := &parseState{}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		sc := ClassifyLine(line)

		if st.collecting {
			p.collectLine(line, st, &res)
			continue
		}

		if st.awaitBrace {
			switch sc.Class {
			case LineBlank:
				continue
			case LineOpenBrace:
				st.awaitBrace = false
				st.collecting = true
				st.depth = 1
				st.quotes = braceState{}
				p.collectLine(sc.Rest, st, &res)
				continue
			default:
				// No body found, the function form was malformed.
				st.awaitBrace = false
				res.Skipped++
				// Fall through and classify this line normally.
			}
		}

		switch sc.Class {
		case LineBlank:
			st.lastComment = false

		case LineComment:
			if !st.lastComment {
				st.pending = nil
			}
			st.pending = append(st.pending, sc.Comment)
			st.lastComment = true

		case LineAlias, LineExport:
			st.lastComment = false
			kind := domain.KindAlias
			if sc.Class == LineExport {
				kind = domain.KindExport
			}
			c := domain.RawConstruct{
				Kind:          kind,
				Name:          sc.Name,
				Code:          sc.Code,
				SourcePath:    path,
				Line:          i + 1,
				CommentAbove:  st.takePending(),
				CommentInline: sc.Comment,
			}
			p.emit(c, &res)

		case LineFunctionStart:
			st.lastComment = false
			st.fn = domain.RawConstruct{
				Kind:         domain.KindFunction,
				Name:         sc.Name,
				SourcePath:   path,
				Line:         i + 1,
				CommentAbove: st.takePending(),
			}
			st.body = nil
			if sc.BraceOnLine {
				st.collecting = true
				st.depth = 1
				st.quotes = braceState{}
				p.collectLine(sc.Rest, st, &res)
			} else {
				st.awaitBrace = true
			}

		default:
			// other-code consumes any pending comment candidate.
			st.lastComment = false
			st.pending = nil
		}
	}

	// EOF with unbalanced braces: the function is discarded.
	if st.collecting || st.awaitBrace {
		res.Skipped++
	}

	return res
}

// collectLine feeds one line into an in-progress function body and finalizes
// the construct when brace balance returns to zero.
func (p *Parser) collectLine(line string, st *parseState, res *Result) {
	depth, quotes, closeAt := countBraces(line, st.depth, st.quotes)
	st.depth = depth
	st.quotes = quotes

	if closeAt >= 0 {
		if frag := strings.TrimRight(line[:closeAt], " \t"); strings.TrimSpace(frag) != "" {
			st.body = append(st.body, frag)
		}
		st.collecting = false
		st.fn.Code = normalizeBody(st.body)
		st.fn.CommentInline = bodyComment(st.body)
		p.emit(st.fn, res)
		st.body = nil
		return
	}

	if len(st.body) > 0 || strings.TrimSpace(line) != "" {
		st.body = append(st.body, strings.TrimRight(line, " \t"))
	}
}

func (p *Parser) emit(c domain.RawConstruct, res *Result) {
	if c.Name == "" {
		res.Skipped++
		return
	}
	if p.ignoreName != nil && p.ignoreName.MatchString(c.Name) {
		res.Skipped++
		return
	}
	res.Constructs = append(res.Constructs, c)
}

// normalizeBody joins body lines, dropping leading and trailing blank lines.
func normalizeBody(body []string) string {
	start, end := 0, len(body)
	for start < end && strings.TrimSpace(body[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(body[end-1]) == "" {
		end--
	}
	return strings.Join(body[start:end], "\n")
}

// bodyComment returns the comment on the first non-blank line of a function
// body, with any `desc:` style prefix removed.
func bodyComment(body []string) string {
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := commentLineRe.FindStringSubmatch(line)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(structuredPrefixRe.ReplaceAllString(m[1], ""))
	}
	return ""
}
