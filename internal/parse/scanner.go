package parse

import (
	"regexp"
	"strings"
)

// LineClass tags one physical line of a shell file.
type LineClass int

const (
	LineBlank LineClass = iota
	LineComment
	LineAlias
	LineExport
	LineFunctionStart
	LineOpenBrace
	LineOther
)

// ScannedLine is the classification of a single line plus its captured parts.
type ScannedLine struct {
	Class LineClass
	// Name is the defined identifier for alias/export/function lines.
	Name string
	// Code is the right-hand-side value for alias/export lines, unquoted.
	Code string
	// Comment is the comment text: the body of a comment-only line, or the
	// trailing inline comment of an alias/export line.
	Comment string
	// BraceOnLine reports whether a function-start line carries its opening brace.
	BraceOnLine bool
	// Rest is the text following the opening brace on a function-start line.
	Rest string
}

// The alias/export/function keywords match case-insensitively regardless of
// the configured case sensitivity, which only governs user-supplied regexes.
var (
	commentLineRe = regexp.MustCompile(`^[ \t]*#[ \t]?(.*)$`)
	aliasRe       = regexp.MustCompile("(?i)^[ \t]*alias[ \t]+([^=\\s\\\\$`]+)=(.*)$")
	exportRe      = regexp.MustCompile(`(?i)^[ \t]*export[ \t]+([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)
	funcStartRe   = regexp.MustCompile(`(?i)^[ \t]*(?:func(?:tion)?[ \t]+)?([\w-]+)[ \t]*\([ \t]*\)[ \t]*(.*)$`)
	openBraceRe   = regexp.MustCompile(`^[ \t]*\{(.*)$`)
)

// ClassifyLine tags one line of text and extracts its substructure.
// Anything unrecognized is LineOther; classification never fails.
func ClassifyLine(line string) ScannedLine {
	if strings.TrimSpace(line) == "" {
		return ScannedLine{Class: LineBlank}
	}

	if m := commentLineRe.FindStringSubmatch(line); m != nil {
		return ScannedLine{Class: LineComment, Comment: strings.TrimRight(m[1], " \t")}
	}

	if m := aliasRe.FindStringSubmatch(line); m != nil {
		code, comment, ok := splitValue(m[2])
		if ok {
			return ScannedLine{Class: LineAlias, Name: m[1], Code: code, Comment: comment}
		}
		return ScannedLine{Class: LineOther}
	}

	if m := exportRe.FindStringSubmatch(line); m != nil {
		code, comment, ok := splitValue(m[2])
		if ok {
			return ScannedLine{Class: LineExport, Name: m[1], Code: code, Comment: comment}
		}
		return ScannedLine{Class: LineOther}
	}

	if m := funcStartRe.FindStringSubmatch(line); m != nil {
		rest := strings.TrimLeft(m[2], " \t")
		switch {
		case strings.HasPrefix(rest, "{"):
			return ScannedLine{
				Class:       LineFunctionStart,
				Name:        m[1],
				BraceOnLine: true,
				Rest:        rest[1:],
			}
		case rest == "":
			return ScannedLine{Class: LineFunctionStart, Name: m[1]}
		default:
			// Subshell bodies (`name() (...)`) and anything else after the
			// parens are not recognized constructs.
			return ScannedLine{Class: LineOther}
		}
	}

	if m := openBraceRe.FindStringSubmatch(line); m != nil {
		return ScannedLine{Class: LineOpenBrace, Rest: m[1]}
	}

	return ScannedLine{Class: LineOther}
}

// splitValue splits the right-hand side of an alias/export assignment into
// the unquoted value and an optional trailing comment. Returns ok=false for
// an unterminated quote or an empty value.
func splitValue(rhs string) (code, comment string, ok bool) {
	rhs = strings.TrimLeft(rhs, " \t")
	if rhs == "" {
		return "", "", false
	}

	switch rhs[0] {
	case '\'', '"':
		quote := rhs[0]
		end := strings.IndexByte(rhs[1:], quote)
		if end < 0 {
			return "", "", false
		}
		code = rhs[1 : 1+end]
		comment = trailingComment(rhs[2+end:])
	default:
		rest := rhs
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			code = rest[:i]
			comment = trailingComment(rest[i:])
		} else {
			code = rest
		}
	}

	if code == "" {
		return "", "", false
	}
	return code, comment, true
}

// trailingComment extracts the text of a `# ...` comment from the tail of a
// line, or returns the empty string.
func trailingComment(tail string) string {
	tail = strings.TrimLeft(tail, " \t")
	if !strings.HasPrefix(tail, "#") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(tail[1:], " "))
}

// braceState carries quote context across lines while counting braces in a
// function body. Braces inside quoted strings or comments are not counted.
type braceState struct {
	inSingle bool
	inDouble bool
}

// countBraces scans one line and returns the running depth after it, the new
// quote state, and, when the depth reached zero mid-line, the byte offset of
// the closing brace (-1 otherwise).
func countBraces(line string, depth int, st braceState) (int, braceState, int) {
	closeAt := -1
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && !st.inSingle:
			escaped = true
		case ch == '\'' && !st.inDouble:
			st.inSingle = !st.inSingle
		case ch == '"' && !st.inSingle:
			st.inDouble = !st.inDouble
		case st.inSingle || st.inDouble:
			// quoted text, braces inert
		case ch == '#':
			// Only a # at line start or after whitespace opens a comment;
			// a word-internal # as in $# or ${#var} is expansion syntax.
			if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
				return depth, st, closeAt
			}
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 && closeAt < 0 {
				return depth, st, i
			}
		}
	}
	return depth, st, closeAt
}
