// Package config provides the wirehttp-server configuration.
//
// This package defines the configuration structure and its validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of ranges and enumerated values
//   - sanitize.go: Normalized copy for display and logging
//   - httpcore.go: Conversion to the connection supervisor's Config
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
