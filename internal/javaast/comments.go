package javaast

import "strings"

// StripComments removes // line comments and /* */ block comments from
// Java source while leaving string and char literals untouched, including
// literals that happen to contain "//" or "/*". Escape sequences inside
// literals are honored so an escaped quote never ends a literal early.
// Newlines inside a removed block comment are kept, so line numbers of
// the remaining code are unchanged.
func StripComments(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	runes := []rune(src)
	n := len(runes)
	i := 0

	for i < n {
		c := runes[i]

		switch {
		case c == '"' || c == '\'':
			quote := c
			out.WriteRune(c)
			i++
			for i < n {
				out.WriteRune(runes[i])
				if runes[i] == '\\' && i+1 < n {
					i++
					out.WriteRune(runes[i])
					i++
					continue
				}
				if runes[i] == quote {
					i++
					break
				}
				i++
			}

		case c == '/' && i+1 < n && runes[i+1] == '/':
			for i < n && runes[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && runes[i+1] == '*':
			i += 2
			for i+1 < n && !(runes[i] == '*' && runes[i+1] == '/') {
				if runes[i] == '\n' {
					out.WriteRune('\n')
				}
				i++
			}
			i += 2

		default:
			out.WriteRune(c)
			i++
		}
	}

	return out.String()
}
