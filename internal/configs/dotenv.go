package configs

import (
	"strings"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// ParseDotenv reads KEY=value lines as used by legacy environment files.
//
// Blank lines and lines starting with # are skipped. Values may be double
// quoted (escapes \n \t \r \" \\ and may span lines), single quoted (literal,
// may span lines) or bare, in which case a # starts a comment. Keys contain
// only letters, digits and underscores.
//
// Errors report the line number only; line contents may be secret.
func ParseDotenv(path string, data []byte) (*Variables, error) {
	vars := NewVariables()
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		lineNum := i + 1
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, &kerrors.ParseError{Path: path, Line: lineNum, Column: 1, Message: "expected KEY=value"}
		}
		key := strings.TrimSpace(line[:eq])
		if !IsValidVariableName(key) {
			return nil, &kerrors.ParseError{Path: path, Line: lineNum, Column: 1, Message: "invalid variable name"}
		}

		rest := strings.TrimLeft(line[eq+1:], " \t")
		var (
			value    string
			consumed int
			err      error
		)
		switch {
		case strings.HasPrefix(rest, `"`):
			value, consumed, err = readQuoted(lines[i:], rest[1:], '"', true)
		case strings.HasPrefix(rest, `'`):
			value, consumed, err = readQuoted(lines[i:], rest[1:], '\'', false)
		default:
			if idx := strings.IndexByte(rest, '#'); idx >= 0 {
				rest = rest[:idx]
			}
			value = strings.TrimSpace(rest)
		}
		if err != nil {
			return nil, &kerrors.ParseError{Path: path, Line: lineNum, Column: eq + 2, Message: err.Error()}
		}

		vars.Set(key, ParseValue(value))
		i += consumed
	}

	return vars, nil
}

type dotenvError string

func (e dotenvError) Error() string { return string(e) }

// readQuoted reads a quoted value starting at first (the text after the
// opening quote) and continuing across lines until the closing quote.
// consumed is the number of extra lines used.
func readQuoted(lines []string, first string, quote byte, escapes bool) (string, int, error) {
	var b strings.Builder
	text := first
	for consumed := 0; ; consumed++ {
		for j := 0; j < len(text); j++ {
			c := text[j]
			if escapes && c == '\\' && j+1 < len(text) {
				j++
				switch text[j] {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				case 'r':
					b.WriteByte('\r')
				case '"', '\\':
					b.WriteByte(text[j])
				case '$':
					// Left escaped for the interpolator.
					b.WriteString(`\$`)
				default:
					return "", 0, dotenvError("invalid escape sequence")
				}
				continue
			}
			if c == quote {
				tail := strings.TrimSpace(text[j+1:])
				if tail != "" && !strings.HasPrefix(tail, "#") {
					return "", 0, dotenvError("unexpected characters after closing quote")
				}
				return b.String(), consumed, nil
			}
			b.WriteByte(c)
		}
		if consumed+1 >= len(lines) {
			return "", 0, dotenvError("unterminated quoted value")
		}
		b.WriteByte('\n')
		text = lines[consumed+1]
	}
}

// IsValidVariableName reports whether name is non-empty and made only of
// ASCII letters, digits and underscores.
func IsValidVariableName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
