package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/stand/internal/configs"
	"github.com/PolarWolf314/stand/internal/secrets"
)

func TestList(t *testing.T) {
	ts := newProject(t, projectTOML)
	ctx := context.Background()

	_, err := EnableEncryption(ctx, ts.Session, EnableEncryptionOptions{Targets: []secrets.VarRef{prodAPIKey}})
	require.NoError(t, err)

	result, err := List(ctx, ts.Session)
	require.NoError(t, err)
	assert.Equal(t, configs.FormatPrimary, result.Format)
	assert.True(t, result.EncryptionEnabled)
	require.Len(t, result.Environments, 3)

	dev, staging, prod := result.Environments[0], result.Environments[1], result.Environments[2]
	assert.Equal(t, "dev", dev.Name)
	assert.True(t, dev.IsDefault)
	assert.Equal(t, 2, dev.Variables)

	assert.Equal(t, "dev", staging.Extends)
	assert.Equal(t, "green", staging.Color, "colour is inherited")
	assert.False(t, staging.RequiresConfirmation)

	assert.True(t, prod.RequiresConfirmation)
	assert.Equal(t, 1, prod.Encrypted)
}

func TestListCyclicDocument(t *testing.T) {
	ts := newProject(t, `version = "2.0"
[environments.a]
description = "A"
extends = "b"
color = "blue"
[environments.b]
description = "B"
extends = "a"
`)

	result, err := List(context.Background(), ts.Session)
	require.NoError(t, err)
	require.Len(t, result.Environments, 2)
	assert.Equal(t, "blue", result.Environments[1].Color)
}

func TestValidate(t *testing.T) {
	ts := newProject(t, projectTOML)
	result, err := Validate(context.Background(), ts.Session)
	require.NoError(t, err)
	assert.Empty(t, result.Problems)

	broken := newProject(t, `version = "2.0"
[environments.a]
description = "A"
extends = "b"
[environments.b]
description = "B"
extends = "a"
[environments.c]
description = ""
`)
	result, err = Validate(context.Background(), broken.Session)
	require.NoError(t, err)
	assert.Len(t, result.Problems, 2)
}
