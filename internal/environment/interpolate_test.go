package environment

import (
	"testing"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	lookup := MapLookup{
		"USER":   "alice",
		"HOST":   "db.local",
		"NESTED": "${USER}",
		"EMPTY":  "",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no placeholders", "plain text", "plain text"},
		{"single", "${USER}", "alice"},
		{"embedded", "postgres://${USER}@${HOST}/app", "postgres://alice@db.local/app"},
		{"adjacent", "${USER}${HOST}", "alicedb.local"},
		{"single pass", "x${NESTED}y", "x${USER}y"},
		{"empty value", "[${EMPTY}]", "[]"},
		{"escaped", `\${USER}`, "${USER}"},
		{"escaped then real", `\$${USER}`, "$alice"},
		{"lone dollar", "cost $5 and $", "cost $5 and $"},
		{"dollar brace later", "$ {USER}", "$ {USER}"},
		{"backslash kept elsewhere", `C:\path\${USER}`, `C:\path${USER}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.input, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandUnterminated(t *testing.T) {
	_, err := Expand("abc${USER", MapLookup{"USER": "alice"})
	require.ErrorIs(t, err, kerrors.ErrUnterminatedPlaceholder)

	var perr *kerrors.PlaceholderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Pos)
}

func TestExpandEmptyName(t *testing.T) {
	_, err := Expand("x${}", MapLookup{})
	require.ErrorIs(t, err, kerrors.ErrEmptyPlaceholderName)

	var perr *kerrors.PlaceholderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Pos)
}

func TestExpandUndefinedNamesOnlyTheVariable(t *testing.T) {
	_, err := Expand("password=hunter2;user=${MISSING}", MapLookup{})
	require.ErrorIs(t, err, kerrors.ErrUndefinedVariable)

	var uerr *kerrors.UndefinedVariableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "MISSING", uerr.Name)
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestOSLookup(t *testing.T) {
	t.Setenv("STAND_EXPAND_TEST", "from-os")

	got, err := Expand("${STAND_EXPAND_TEST}", OSLookup)
	require.NoError(t, err)
	assert.Equal(t, "from-os", got)
}
