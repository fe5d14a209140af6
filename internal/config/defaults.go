package config

import (
	"fmt"
	"os"
)

// Default returns the factory default configuration. The environment name is
// left empty on purpose: it has no sensible default and validation requires
// it.
func Default() Config {
	return Config{
		Environment: EnvironmentConfig{
			TemplatePrefix: "templates",
			OutputDir:      "out",
		},
		Network: NetworkConfig{
			CIDR:            "10.0.0.0/16",
			AZCount:         2,
			AZReferenceRole: "private",
			Subnets: []SubnetConfig{
				{Name: "public", Role: "public", PrefixLength: 18},
				{Name: "private", Role: "private", PrefixLength: 22},
			},
		},
		Deploy: DeployConfig{
			StackTimeoutMinutes:   60,
			MonitorTimeoutMinutes: 120,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
	}
}

// defaultConfigTemplate is the commented YAML written by envforge init.
const defaultConfigTemplate = `# envforge environment configuration
environment:
  # Name of the environment. Used as the root stack name and in the names
  # of every run-scoped resource.
  name: %s
  # Bucket rendered templates are published to. Created if missing.
  bucket: %s-templates
  # Key prefix for published template artifacts.
  template_prefix: templates
  # Local directory "envforge create" renders into.
  output_dir: out

network:
  # Address space of the environment network.
  cidr: 10.0.0.0/16
  # How many availability zones to spread subnets across (1-4).
  az_count: 2
  # Subnet layer whose zones back the availabilityZone<N> parameters
  # offered to child templates.
  az_reference_role: private
  # Subnet layers. Each is carved once per availability zone.
  subnets:
    - role: public
      prefix_length: 18
    - role: private
      prefix_length: 22

deploy:
  # Per-stack creation timeout handed to the deployment service.
  stack_timeout_minutes: 60
  # Wall-clock budget for watching a deployment.
  monitor_timeout_minutes: 120

aws:
  region: us-east-1
  # profile: default

# Pin child template parameters to literal values by parameter name. An
# override beats every other binding source.
# overrides:
#   vpcCidr: 10.1.0.0/16
`

// WriteDefault writes a commented factory-default configuration for the
// named environment.
func WriteDefault(path, envName string) error {
	content := fmt.Sprintf(defaultConfigTemplate, envName, envName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
