package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yndnr/wirehttp/internal/core/domain"
	"github.com/yndnr/wirehttp/internal/server/httpcore"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
)

// Verify validates the configuration. The returned error wraps
// domain.ErrInvalidConfig and names the first offending key.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return domain.ErrInvalidConfig.WithDetails("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(format, args...))
}

func verifyServer(cfg *ServerSection) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return invalid("server.host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return invalid("server.port %d out of range 0-65535", cfg.Port)
	}
	if strings.TrimSpace(cfg.ViewsDir) == "" {
		return invalid("server.views_dir is required")
	}
	if _, err := httpcore.ParseMethodPolicy(cfg.UnknownMethod); err != nil {
		return invalid("server.unknown_method must be reject or get, got %q", cfg.UnknownMethod)
	}

	limits := []struct {
		key   string
		value int
	}{
		{"server.max_conns", cfg.MaxConns},
		{"server.max_handlers", cfg.MaxHandlers},
		{"server.rate_limit", cfg.RateLimit},
		{"server.max_header_bytes", cfg.MaxHeaderBytes},
		{"server.max_line_bytes", cfg.MaxLineBytes},
	}
	for _, l := range limits {
		if l.value < 0 {
			return invalid("%s must not be negative, got %d", l.key, l.value)
		}
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return invalid("metrics.path must start with /, got %q", cfg.Path)
	}
	if slices.Contains(ReservedPaths, cfg.Path) {
		return invalid("metrics.path %q is reserved for a built-in route", cfg.Path)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return invalid("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	if !logger.ValidFormat(cfg.Format) {
		return invalid("log.format %q is not one of json, text, console", cfg.Format)
	}
	return nil
}
