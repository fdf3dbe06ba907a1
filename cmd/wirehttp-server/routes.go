package main

import (
	"bytes"
	"context"

	"github.com/yndnr/wirehttp/internal/core/domain"
	"github.com/yndnr/wirehttp/internal/infra/buildinfo"
	"github.com/yndnr/wirehttp/internal/server/config"
	"github.com/yndnr/wirehttp/internal/server/httpcore"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
	"github.com/yndnr/wirehttp/internal/telemetry/metric"
)

type healthStatus struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// newRouter builds the demo route table. The metrics route is added only
// when reg is non-nil.
func newRouter(cfg *config.ServerConfig, reg *metric.Registry) (*httpcore.Router, error) {
	r := httpcore.NewRouter()

	if err := r.Get(config.PathIndex, index); err != nil {
		return nil, err
	}
	if err := r.Get(config.PathHello, hello); err != nil {
		return nil, err
	}
	if err := r.Get(config.PathHealth, health); err != nil {
		return nil, err
	}

	if reg != nil {
		if err := r.Get(cfg.Metrics.Path, metricsHandler(reg)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func index(ctx context.Context, _ *httpcore.Request, res *httpcore.Response) {
	if err := res.Render("index.html"); err != nil {
		logger.L(ctx).Debug("render failed", "file", "index.html", "error", err)
	}
}

func hello(ctx context.Context, _ *httpcore.Request, res *httpcore.Response) {
	res.Header().Set("Content-Type", domain.MimeTextPlain.String())
	if err := res.Send("Hello, World!"); err != nil {
		logger.L(ctx).Warn("failed to send greeting", "error", err)
	}
}

func health(ctx context.Context, _ *httpcore.Request, res *httpcore.Response) {
	if err := res.JSON(healthStatus{Status: "ok", Build: buildinfo.Get()}); err != nil {
		logger.L(ctx).Warn("failed to send health", "error", err)
	}
}

func metricsHandler(reg *metric.Registry) httpcore.Handler {
	return func(ctx context.Context, _ *httpcore.Request, res *httpcore.Response) {
		var buf bytes.Buffer
		contentType, err := reg.WriteText(&buf)
		if err != nil {
			logger.L(ctx).Error("failed to encode metrics", "error", err)
			res.SetStatus(domain.StatusServerError)
			_ = res.Send("")
			return
		}
		res.Header().Set("Content-Type", contentType)
		if err := res.SendBytes(buf.Bytes()); err != nil {
			logger.L(ctx).Warn("failed to send metrics", "error", err)
		}
	}
}
