package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the promptvault server",
	Long: `Start the promptvault HTTP server.

The server loads the prompt library from the configured storage backend,
hosts the library page and exposes the API used by "promptvault api".
Config changes to log.level and desktop.opacity apply without a restart.

Examples:
  promptvault serve                    # Start on the configured address (default 127.0.0.1:8080)
  promptvault serve --port 3000        # Start on custom port
  promptvault serve --home /tmp/pv     # Use a different home directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}

		// Set up logger; level follows config reloads
		level := new(slog.LevelVar)
		level.Set(cfgMgr.Get().LogLevel())
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
		cfgMgr.SetLogger(logger)
		if cfgMgr.File() != "" {
			cfgMgr.WatchConfig()
			logger.Info("watching config", "file", cfgMgr.File())
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			Home:          h,
			ConfigManager: cfgMgr,
			Logger:        logger,
			LogLevel:      level,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
