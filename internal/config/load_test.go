package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBytesAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(`
environment:
  name: staging
`))
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment.Name)
	assert.Equal(t, "staging-templates", cfg.Environment.Bucket)
	assert.Equal(t, "templates", cfg.Environment.TemplatePrefix)
	assert.Equal(t, "10.0.0.0/16", cfg.Network.CIDR)
	assert.Equal(t, 2, cfg.Network.AZCount)
	assert.Equal(t, "private", cfg.Network.AZReferenceRole)
	require.Len(t, cfg.Network.Subnets, 2)
	assert.Equal(t, "public", cfg.Network.Subnets[0].Role)
	assert.Equal(t, 18, cfg.Network.Subnets[0].PrefixLength)
	assert.Equal(t, 60, cfg.Deploy.StackTimeoutMinutes)
	assert.Equal(t, 120, cfg.Deploy.MonitorTimeoutMinutes)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
}

func TestLoadBytesExplicitValuesWin(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(`
environment:
  name: prod
  bucket: my-artifacts
network:
  cidr: 172.16.0.0/16
  az_count: 3
  az_reference_role: data
  subnets:
    - role: web
      prefix_length: 20
    - role: data
      prefix_length: 22
deploy:
  stack_timeout_minutes: 30
aws:
  region: eu-west-1
overrides:
  vpcCidr: 172.16.0.0/16
`))
	require.NoError(t, err)

	assert.Equal(t, "my-artifacts", cfg.Environment.Bucket)
	assert.Equal(t, "172.16.0.0/16", cfg.Network.CIDR)
	assert.Equal(t, 3, cfg.Network.AZCount)
	assert.Equal(t, "data", cfg.Network.AZReferenceRole)
	assert.Equal(t, "web", cfg.Network.Subnets[0].Name, "name defaults to role")
	assert.Equal(t, 30, cfg.Deploy.StackTimeoutMinutes)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "172.16.0.0/16", cfg.Overrides["vpcCidr"])
}

func TestLoadBytesValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    `network: {cidr: 10.0.0.0/16}`,
			wantErr: "environment.name is required",
		},
		{
			name: "bad name",
			yaml: `
environment: {name: "9lives"}
`,
			wantErr: "must start with a letter",
		},
		{
			name: "bad cidr",
			yaml: `
environment: {name: staging}
network: {cidr: "10.0.0.0/99"}
`,
			wantErr: "not a valid CIDR",
		},
		{
			name: "az count out of range",
			yaml: `
environment: {name: staging}
network: {az_count: 9}
`,
			wantErr: "az_count must be between 1 and 4",
		},
		{
			name: "duplicate role",
			yaml: `
environment: {name: staging}
network:
  subnets:
    - {role: public, prefix_length: 20}
    - {role: public, prefix_length: 22}
`,
			wantErr: `duplicates role "public"`,
		},
		{
			name: "prefix out of range",
			yaml: `
environment: {name: staging}
network:
  subnets:
    - {role: public, prefix_length: 30}
`,
			wantErr: "prefix_length must be between 16 and 28",
		},
		{
			name: "dangling az reference role",
			yaml: `
environment: {name: staging}
network:
  az_reference_role: dmz
  subnets:
    - {role: public, prefix_length: 20}
`,
			wantErr: `az_reference_role "dmz" does not match`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBytesRejectsInvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte("environment: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, WriteDefault(path, "staging"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment.Name)
	assert.Equal(t, "staging-templates", cfg.Environment.Bucket)
	assert.Equal(t, Default().Network, cfg.Network)
}
