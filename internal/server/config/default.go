package config

// Default configuration values.
const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 6969
	DefaultViewsDir       = "./views"
	DefaultUnknownMethod  = "reject"
	DefaultMaxHeaderBytes = 64 * 1024
	DefaultMaxLineBytes   = 8 * 1024

	DefaultMetricsPath = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Paths served by the built-in routes of wirehttp-server.
const (
	PathIndex  = "/"
	PathHello  = "/hello"
	PathHealth = "/health"
)

// ReservedPaths are the built-in route paths metrics.path may not reuse.
var ReservedPaths = []string{PathIndex, PathHello, PathHealth}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Host:             DefaultHost,
			Port:             DefaultPort,
			ViewsDir:         DefaultViewsDir,
			NotFoundFallback: true,
			UnknownMethod:    DefaultUnknownMethod,
			StrictResponse:   true,
			MaxHeaderBytes:   DefaultMaxHeaderBytes,
			MaxLineBytes:     DefaultMaxLineBytes,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
