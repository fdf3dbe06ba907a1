package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/wirehttp/internal/infra/buildinfo"
	"github.com/yndnr/wirehttp/internal/infra/confloader"
	"github.com/yndnr/wirehttp/internal/server/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "wirehttp-server",
		Usage:   "Minimal HTTP/1.1 server, one request per connection",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the server (default)",
				Action: serveAction,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration as YAML",
				Action: configAction,
			},
			{
				Name:   "version",
				Usage:  "Print build information",
				Action: versionAction,
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			EnvVars: []string{"WIREHTTP_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Listen host (server.host)",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Listen port (server.port)",
		},
		&cli.StringFlag{
			Name:  "views",
			Usage: "Views directory for rendered files (server.views_dir)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (log.level)",
		},
	}
}

// overrides maps explicitly set flags to configuration keys.
func overrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	if c.IsSet("host") {
		out["server.host"] = c.String("host")
	}
	if c.IsSet("port") {
		out["server.port"] = c.Int("port")
	}
	if c.IsSet("views") {
		out["server.views_dir"] = c.String("views")
	}
	if c.IsSet("log-level") {
		out["log.level"] = c.String("log-level")
	}
	return out
}

// loadConfig builds the configuration from defaults, the optional file,
// WIREHTTP_* environment variables and flag overrides, then verifies it.
func loadConfig(path string, values map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(values),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func configAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"), overrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out, err := yaml.Marshal(config.Sanitize(cfg))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = c.App.Writer.Write(out)
	return err
}

func versionAction(c *cli.Context) error {
	info := buildinfo.Get()
	_, err := fmt.Fprintf(c.App.Writer, "%s %s\ncommit: %s\nbuilt:  %s\ngo:     %s\n",
		c.App.Name, info.Version, info.Commit, info.BuildTime, info.GoVersion)
	return err
}

func serveAction(c *cli.Context) error {
	path := c.String("config")
	values := overrides(c)

	cfg, err := loadConfig(path, values)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return serve(c.Context, cfg, serveOptions{
		configPath: path,
		overrides:  values,
		logOutput:  c.App.Writer,
	})
}
