// Package config defines the configuration model for an environment.
//
// The [Config] struct is the canonical representation of an environment's
// desired state: its address space and subnet layers, artifact storage,
// deployment timeouts, and manual binding overrides. It is loaded from a
// YAML file, merged with factory defaults, and validated before any phase
// runs.
package config
