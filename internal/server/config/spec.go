package config

// ServerConfig is the root configuration for wirehttp-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server" yaml:"server"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
	Log     LogSection     `koanf:"log" yaml:"log"`
}

// ServerSection configures the listener and request handling.
type ServerSection struct {
	Host string `koanf:"host" yaml:"host"`
	Port int    `koanf:"port" yaml:"port"`

	// ViewsDir is the directory Render resolves files against.
	ViewsDir string `koanf:"views_dir" yaml:"views_dir"`

	// NotFoundFallback answers unmatched requests with a 404. When false,
	// the connection is closed without a response.
	NotFoundFallback bool `koanf:"not_found_fallback" yaml:"not_found_fallback"`

	// UnknownMethod is "reject" (400) or "get" (treat as GET).
	UnknownMethod string `koanf:"unknown_method" yaml:"unknown_method"`

	// StrictResponse rejects a second send on the same response.
	StrictResponse bool `koanf:"strict_response" yaml:"strict_response"`

	// Admission limits. 0 disables a limit.
	MaxConns    int `koanf:"max_conns" yaml:"max_conns"`
	MaxHandlers int `koanf:"max_handlers" yaml:"max_handlers"`
	RateLimit   int `koanf:"rate_limit" yaml:"rate_limit"`

	// Request head limits in bytes. 0 disables a limit.
	MaxHeaderBytes int `koanf:"max_header_bytes" yaml:"max_header_bytes"`
	MaxLineBytes   int `koanf:"max_line_bytes" yaml:"max_line_bytes"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Path    string `koanf:"path" yaml:"path"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
