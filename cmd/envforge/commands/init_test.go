package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	cmd := Init()

	require.NotNil(t, cmd)
	assert.Equal(t, "init", cmd.Use)
	assert.NotNil(t, cmd.RunE, "init command should have RunE function")
}

func TestInit_OutputFlag(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag, "output flag should exist")
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "envforge.yaml", flag.DefValue)
}

func TestInit_NameFlag(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("name")
	require.NotNil(t, flag, "name flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "myenv", flag.DefValue)
}

func TestInit_ForceFlag(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("force")
	require.NotNil(t, flag, "force flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}
