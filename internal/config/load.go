package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file. Omitted
// fields fall back to the factory defaults before validation.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a configuration from raw YAML.
func LoadBytes(data []byte) (*Config, error) {
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills omitted fields from the factory defaults.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Environment.TemplatePrefix == "" {
		cfg.Environment.TemplatePrefix = def.Environment.TemplatePrefix
	}
	if cfg.Environment.OutputDir == "" {
		cfg.Environment.OutputDir = def.Environment.OutputDir
	}
	if cfg.Environment.Bucket == "" && cfg.Environment.Name != "" {
		cfg.Environment.Bucket = cfg.Environment.Name + "-templates"
	}

	if cfg.Network.CIDR == "" {
		cfg.Network.CIDR = def.Network.CIDR
	}
	if cfg.Network.AZCount == 0 {
		cfg.Network.AZCount = def.Network.AZCount
	}
	if cfg.Network.AZReferenceRole == "" {
		cfg.Network.AZReferenceRole = def.Network.AZReferenceRole
	}
	if len(cfg.Network.Subnets) == 0 {
		cfg.Network.Subnets = def.Network.Subnets
	}
	for i := range cfg.Network.Subnets {
		if cfg.Network.Subnets[i].Name == "" {
			cfg.Network.Subnets[i].Name = cfg.Network.Subnets[i].Role
		}
	}

	if cfg.Deploy.StackTimeoutMinutes == 0 {
		cfg.Deploy.StackTimeoutMinutes = def.Deploy.StackTimeoutMinutes
	}
	if cfg.Deploy.MonitorTimeoutMinutes == 0 {
		cfg.Deploy.MonitorTimeoutMinutes = def.Deploy.MonitorTimeoutMinutes
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = def.AWS.Region
	}
}
