package config

import (
	"fmt"
	"net"
	"regexp"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "envforge.yaml"

// Config holds the full environment configuration.
type Config struct {
	Environment EnvironmentConfig `mapstructure:"environment" yaml:"environment"`
	Network     NetworkConfig     `mapstructure:"network" yaml:"network"`
	Deploy      DeployConfig      `mapstructure:"deploy" yaml:"deploy"`
	AWS         AWSConfig         `mapstructure:"aws" yaml:"aws"`

	// Overrides pins child template parameters to literal values by
	// parameter name. An override beats every other binding source.
	Overrides map[string]string `mapstructure:"overrides" yaml:"overrides,omitempty"`
}

// EnvironmentConfig identifies the environment and where its artifacts go.
type EnvironmentConfig struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Bucket         string `mapstructure:"bucket" yaml:"bucket"`
	TemplatePrefix string `mapstructure:"template_prefix" yaml:"template_prefix"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
}

// NetworkConfig describes the address space and its subdivision.
type NetworkConfig struct {
	CIDR    string `mapstructure:"cidr" yaml:"cidr"`
	AZCount int    `mapstructure:"az_count" yaml:"az_count"`

	// AZReferenceRole picks which subnet layer backs the availabilityZone<N>
	// convention parameters offered to child templates.
	AZReferenceRole string `mapstructure:"az_reference_role" yaml:"az_reference_role"`

	Subnets []SubnetConfig `mapstructure:"subnets" yaml:"subnets"`
}

// SubnetConfig requests one subnet layer, carved once per availability zone.
type SubnetConfig struct {
	Name         string `mapstructure:"name" yaml:"name,omitempty"`
	Role         string `mapstructure:"role" yaml:"role"`
	PrefixLength int    `mapstructure:"prefix_length" yaml:"prefix_length"`
}

// DeployConfig bounds the deployment.
type DeployConfig struct {
	// StackTimeoutMinutes is passed to the deployment service per stack.
	StackTimeoutMinutes int `mapstructure:"stack_timeout_minutes" yaml:"stack_timeout_minutes"`
	// MonitorTimeoutMinutes bounds the watch loop.
	MonitorTimeoutMinutes int `mapstructure:"monitor_timeout_minutes" yaml:"monitor_timeout_minutes"`
}

// AWSConfig narrows the credential chain. All fields are optional.
type AWSConfig struct {
	Region          string `mapstructure:"region" yaml:"region"`
	Profile         string `mapstructure:"profile" yaml:"profile,omitempty"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

var environmentNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]{0,62}$`)

// Validate checks the configuration for structural problems. It does not
// verify that the requested subnets actually fit the network CIDR; the
// planner reports that with full context.
func (c *Config) Validate() error {
	if c.Environment.Name == "" {
		return fmt.Errorf("environment.name is required")
	}
	if !environmentNamePattern.MatchString(c.Environment.Name) {
		return fmt.Errorf("environment.name %q must start with a letter and contain only letters, digits, and hyphens", c.Environment.Name)
	}

	if _, _, err := net.ParseCIDR(c.Network.CIDR); err != nil {
		return fmt.Errorf("network.cidr %q is not a valid CIDR: %w", c.Network.CIDR, err)
	}
	if c.Network.AZCount < 1 || c.Network.AZCount > 4 {
		return fmt.Errorf("network.az_count must be between 1 and 4, got %d", c.Network.AZCount)
	}
	if len(c.Network.Subnets) == 0 {
		return fmt.Errorf("network.subnets must list at least one subnet layer")
	}

	roles := make(map[string]bool, len(c.Network.Subnets))
	for i, s := range c.Network.Subnets {
		if s.Role == "" {
			return fmt.Errorf("network.subnets[%d].role is required", i)
		}
		if roles[s.Role] {
			return fmt.Errorf("network.subnets[%d] duplicates role %q", i, s.Role)
		}
		roles[s.Role] = true
		if s.PrefixLength < 16 || s.PrefixLength > 28 {
			return fmt.Errorf("network.subnets[%d].prefix_length must be between 16 and 28, got %d", i, s.PrefixLength)
		}
	}

	if c.Network.AZReferenceRole != "" && !roles[c.Network.AZReferenceRole] {
		return fmt.Errorf("network.az_reference_role %q does not match any subnet role", c.Network.AZReferenceRole)
	}

	if c.Deploy.StackTimeoutMinutes < 0 || c.Deploy.MonitorTimeoutMinutes < 0 {
		return fmt.Errorf("deploy timeouts must not be negative")
	}

	return nil
}
