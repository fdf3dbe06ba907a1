package config

import (
	"path/filepath"
	"strings"
)

// Sanitize returns a copy of the config with values normalized for
// display: enumerations lowercased, the views directory made absolute
// and cleaned. The input is not modified.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	sanitized.Server.Host = strings.TrimSpace(sanitized.Server.Host)
	sanitized.Server.UnknownMethod = strings.ToLower(strings.TrimSpace(sanitized.Server.UnknownMethod))
	if sanitized.Server.ViewsDir != "" {
		if abs, err := filepath.Abs(sanitized.Server.ViewsDir); err == nil {
			sanitized.Server.ViewsDir = abs
		}
	}

	sanitized.Log.Level = strings.ToLower(sanitized.Log.Level)
	sanitized.Log.Format = strings.ToLower(sanitized.Log.Format)

	return &sanitized
}
