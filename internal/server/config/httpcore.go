package config

import (
	"fmt"

	"github.com/yndnr/wirehttp/internal/server/httpcore"
)

// ToHTTPConfig converts ServerConfig to the connection supervisor's Config.
func ToHTTPConfig(cfg *ServerConfig) (*httpcore.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is nil")
	}

	policy, err := httpcore.ParseMethodPolicy(cfg.Server.UnknownMethod)
	if err != nil {
		return nil, fmt.Errorf("server.unknown_method: %w", err)
	}

	return &httpcore.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		ViewsDir:         cfg.Server.ViewsDir,
		NotFoundFallback: cfg.Server.NotFoundFallback,
		UnknownMethod:    policy,
		StrictResponse:   cfg.Server.StrictResponse,
		MaxConns:         cfg.Server.MaxConns,
		MaxHandlers:      cfg.Server.MaxHandlers,
		RateLimit:        cfg.Server.RateLimit,
		MaxHeaderBytes:   cfg.Server.MaxHeaderBytes,
		MaxLineBytes:     cfg.Server.MaxLineBytes,
	}, nil
}
