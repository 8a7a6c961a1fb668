package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artpar/scaffold/bootstrap"
	"github.com/artpar/scaffold/config"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the scaffold HTTP server.

The server loads configuration from scaffold.yaml (or --config), or
from SCAFFOLD_* environment variables when no file exists, and serves
the module routes, reference search, and Prometheus metrics.

Environment variables:
  SCAFFOLD_DATABASE_DSN   - Database path (default: scaffold.db)
  SCAFFOLD_SERVER_PORT    - Server port (default: 8080)
  SCAFFOLD_LOG_LEVEL      - Log level: debug, info, warn, error

Examples:
  scaffold serve
  scaffold serve --config /etc/scaffold/config.yaml
  scaffold serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var a *bootstrap.App
	var err error

	switch {
	case hasConfigFile && hotReload:
		a, err = bootstrap.NewWithHotReload(cfgFile, bootstrap.Options{})
	case hasConfigFile:
		var cfg *config.Config
		cfg, err = config.Load(cfgFile)
		if err == nil {
			a, err = bootstrap.New(cfg, bootstrap.Options{})
		}
	default:
		var cfg *config.Config
		cfg, err = config.FromEnv()
		if err == nil {
			a, err = bootstrap.New(cfg, bootstrap.Options{})
		}
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}
