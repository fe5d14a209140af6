package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `environment:
  name: staging
network:
  cidr: 10.0.0.0/16
  az_count: 2
  subnets:
    - role: public
      prefix_length: 18
    - role: private
      prefix_length: 22
`

// writeTestConfig writes a valid config file into a temp dir and returns
// its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "envforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))
	return path
}

func TestCreate_RendersTemplates(t *testing.T) {
	configPath := writeTestConfig(t)
	outputDir := t.TempDir()

	require.NoError(t, Create(context.Background(), configPath, outputDir))

	network, err := filepath.Glob(filepath.Join(outputDir, "Network.*.template"))
	require.NoError(t, err)
	assert.Len(t, network, 1, "network template should be rendered")

	root, err := filepath.Glob(filepath.Join(outputDir, "staging.*.template"))
	require.NoError(t, err)
	assert.Len(t, root, 1, "root template should be rendered")
}

func TestCreate_MissingConfig(t *testing.T) {
	err := Create(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config file found")
}

func TestCreate_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "envforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment:\n  name: staging\nnetwork:\n  cidr: not-a-cidr\n"), 0o600))

	err := Create(context.Background(), path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
