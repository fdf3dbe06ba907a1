package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/yndnr/wirehttp/internal/infra/buildinfo"
	"github.com/yndnr/wirehttp/internal/infra/confloader"
	"github.com/yndnr/wirehttp/internal/infra/shutdown"
	"github.com/yndnr/wirehttp/internal/server/config"
	"github.com/yndnr/wirehttp/internal/server/httpcore"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
	"github.com/yndnr/wirehttp/internal/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	// configPath is watched for log level changes when set.
	configPath string
	overrides  map[string]any
	logOutput  io.Writer

	// ready is called with the bound address before accepting.
	ready func(net.Addr)
}

func serve(ctx context.Context, cfg *config.ServerConfig, opts serveOptions) error {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.logOutput,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting wirehttp-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", opts.configPath)

	var reg *metric.Registry
	if cfg.Metrics.Enabled {
		reg = metric.NewRegistry()
		if err := reg.SetBuildInfo(info.Version, info.Commit, info.GoVersion); err != nil {
			log.Warn("failed to register build info", "error", err)
		}
	}

	httpCfg, err := config.ToHTTPConfig(cfg)
	if err != nil {
		return err
	}

	router, err := newRouter(cfg, reg)
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	srv, err := httpcore.Bind(httpCfg,
		httpcore.WithLogger(log),
		httpcore.WithMetrics(reg),
		httpcore.WithRouter(router),
	)
	if err != nil {
		return err
	}

	h := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))
	h.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down server")
		return srv.Shutdown(ctx)
	})

	if opts.configPath != "" {
		w, err := watchLogLevel(opts.configPath, opts.overrides, log)
		if err != nil {
			log.Warn("config reload disabled", "error", err)
		} else {
			h.OnShutdown(func(context.Context) error { return w.Stop() })
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- srv.Listen(ctx)
	}()

	if opts.ready != nil {
		opts.ready(srv.Addr())
	}

	if err := h.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	if err := <-listenErr; err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchLogLevel reloads the configuration whenever the file changes and
// applies the new log level. Other settings need a restart.
func watchLogLevel(path string, values map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path, values)
		if err != nil {
			log.Warn("ignoring invalid configuration change", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level updated", "level", logger.GetLevel())
		}
	})
	w.StartAsync()
	return w, nil
}
