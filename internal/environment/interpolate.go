package environment

import (
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
)

// Lookup supplies values for ${NAME} placeholders.
type Lookup interface {
	LookupEnv(name string) (string, bool)
}

// LookupFunc adapts a function such as os.LookupEnv to Lookup.
type LookupFunc func(name string) (string, bool)

func (f LookupFunc) LookupEnv(name string) (string, bool) { return f(name) }

// OSLookup reads the process environment.
var OSLookup Lookup = LookupFunc(os.LookupEnv)

// MapLookup serves placeholders from a fixed map.
type MapLookup map[string]string

func (m MapLookup) LookupEnv(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Expand replaces every ${NAME} in s with lookup's value for NAME.
//
// Expansion is a single left-to-right pass: substituted text is never
// scanned again, so a value containing ${...} is inserted literally. A
// backslash before $ yields a literal $ and suppresses expansion. A $ not
// followed by { is copied as is.
//
// Errors are *kerrors.PlaceholderError for `${` without a closing brace or
// for `${}`, and *kerrors.UndefinedVariableError, carrying only the name,
// when lookup has no value.
func Expand(s string, lookup Lookup) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '$':
			b.WriteByte('$')
			i += 2
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				return "", &kerrors.PlaceholderError{Kind: kerrors.ErrUnterminatedPlaceholder, Pos: i}
			}
			name := s[i+2 : i+2+end]
			if name == "" {
				return "", &kerrors.PlaceholderError{Kind: kerrors.ErrEmptyPlaceholderName, Pos: i}
			}
			val, ok := lookup.LookupEnv(name)
			if !ok {
				return "", &kerrors.UndefinedVariableError{Name: name}
			}
			b.WriteString(val)
			i += end + 3
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}
