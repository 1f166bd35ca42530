package configs

import (
	"testing"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDotenv(t *testing.T) {
	input := `# database settings
DB_HOST=localhost
DB_PORT = 5432   # inline comment

QUOTED="hello world # not a comment"
SINGLE='literal \n ${HOME}'
ESCAPED="line1\nline2\ttab \"q\""
MULTI="first
second"
EMPTY=
DOLLAR="cost \$5"
`
	vars, err := ParseDotenv(".stand.dev.env", []byte(input))
	require.NoError(t, err)

	want := []struct{ key, value string }{
		{"DB_HOST", "localhost"},
		{"DB_PORT", "5432"},
		{"QUOTED", "hello world # not a comment"},
		{"SINGLE", `literal \n ${HOME}`},
		{"ESCAPED", "line1\nline2\ttab \"q\""},
		{"MULTI", "first\nsecond"},
		{"EMPTY", ""},
		{"DOLLAR", `cost \$5`},
	}
	keys := make([]string, len(want))
	for i, w := range want {
		keys[i] = w.key
		v, ok := vars.Get(w.key)
		require.True(t, ok, w.key)
		assert.Equal(t, w.value, v.Plain(), w.key)
	}
	assert.Equal(t, keys, vars.Keys())
}

func TestParseDotenvErrorsNeverEchoContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing equals", "OK=1\nsupersecret\n", 2},
		{"bad key", "MY-KEY=supersecret\n", 1},
		{"unterminated", "A=\"supersecret\nstill open\n", 1},
		{"bad escape", "A=\"super\\qsecret\"\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDotenv("f.env", []byte(tt.input))
			require.ErrorIs(t, err, kerrors.ErrParse)

			var perr *kerrors.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
			assert.NotContains(t, err.Error(), "supersecret")
		})
	}
}

func TestIsValidVariableName(t *testing.T) {
	for _, ok := range []string{"A", "_X", "db_url_2", "9LIVES"} {
		assert.True(t, IsValidVariableName(ok), ok)
	}
	for _, bad := range []string{"", "MY-KEY", "with space", "dot.ted", "ünï"} {
		assert.False(t, IsValidVariableName(bad), bad)
	}
}
