package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jxiaof/next16-demo/internal"
	"github.com/jxiaof/next16-demo/internal/config"
	"github.com/jxiaof/next16-demo/internal/migrations"
	"github.com/spf13/cobra"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		internal.SetLogLevel(cfg.LogLevel)

		if migrateOnStart {
			if err := migrations.Up(cfg.Database.DSN()); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := internal.NewApplication(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}
