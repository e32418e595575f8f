package querysql

import (
	"fmt"
	"strings"
)

// scanTemplate returns the distinct placeholder names referenced by a filter
// template, in order of first appearance.
//
// Quoted literals ('...' and "...") and comments (-- to end of line, /* */)
// are skipped. A ';' or '?' outside them is rejected: the first would allow
// stacked statements and the second is a positional placeholder that Params
// cannot bind. A sigil followed by a digit (:1, @1, $1) is rejected for the
// same reason.
func scanTemplate(template string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '\'', '"':
			end := skipQuoted(template, i)
			if end < 0 {
				return nil, fmt.Errorf("unterminated %c literal at offset %d", c, i)
			}
			i = end
		case '-':
			if i+1 < len(template) && template[i+1] == '-' {
				i = skipLineComment(template, i)
			}
		case '/':
			if i+1 < len(template) && template[i+1] == '*' {
				end := strings.Index(template[i+2:], "*/")
				if end < 0 {
					return nil, fmt.Errorf("unterminated comment at offset %d", i)
				}
				i += 2 + end + 1
			}
		case ';':
			return nil, fmt.Errorf("statement separator ';' at offset %d", i)
		case '?':
			return nil, fmt.Errorf("positional placeholder '?' at offset %d; use a named placeholder", i)
		case ':', '@', '$':
			if i+1 < len(template) && isDigit(template[i+1]) {
				return nil, fmt.Errorf("numbered placeholder '%c%c' at offset %d; use a named placeholder", c, template[i+1], i)
			}
			if i+1 >= len(template) || !isIdentStart(template[i+1]) {
				continue
			}
			j := i + 1
			for j < len(template) && isIdentPart(template[j]) {
				j++
			}
			name := template[i+1 : j]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = j - 1
		}
	}

	return names, nil
}

// skipQuoted returns the index of the quote closing the literal that opens at
// start, or -1 if it is never closed. A doubled quote is an escaped quote.
func skipQuoted(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i
	}
	return -1
}

// skipLineComment returns the index of the newline ending the comment that
// opens at start, or the last index when the comment runs to the end.
func skipLineComment(s string, start int) int {
	if end := strings.IndexByte(s[start:], '\n'); end >= 0 {
		return start + end
	}
	return len(s) - 1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '_'
}
