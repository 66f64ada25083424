package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/urfave/cli/v2"

	"github.com/alpadrive/fleet-server/config"
)

const (
	ServiceName      = "fleet-server"
	ServiceNamespace = "alpadrive"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	app := &cli.App{
		Name:  ServiceName,
		Usage: "Fleet telemetry backend",
		Commands: []*cli.Command{
			serverCmd(),
			monitorCmd(),
		},
	}

	return app.Run(os.Args)
}

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Run the HTTP/WebSocket server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config_file", Usage: "Path to the configuration file"},
			&cli.StringFlag{Name: "http.addr", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "mongo.uri", Usage: "MongoDB connection URI"},
		},
		Action: func(c *cli.Context) error {
			cfg, v, err := config.Load(bindFromCLI(c))
			if err != nil {
				return err
			}
			config.Watch(v, func(ws config.WSConfig, lobby config.LobbyConfig) {
				cfg.WS = ws
				cfg.Lobby = lobby
			})

			app := NewApp(cfg)
			if err := app.Start(c.Context); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("shutting down")
			return app.Stop(context.Background())
		},
	}
}

// bindFromCLI copies the three flags serverCmd declares into the pflag
// set config.Load expects, so a value passed on the command line takes
// priority over the config file and environment, matching viper's own
// precedence order.
func bindFromCLI(c *cli.Context) *pflag.FlagSet {
	fs := config.Flags()
	fs.Set("config_file", c.String("config_file"))
	if v := c.String("http.addr"); v != "" {
		fs.Set("http.addr", v)
	}
	if v := c.String("mongo.uri"); v != "" {
		fs.Set("mongo.uri", v)
	}
	return fs
}
