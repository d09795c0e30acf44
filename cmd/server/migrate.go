package main

import (
	"github.com/jxiaof/next16-demo/internal"
	"github.com/jxiaof/next16-demo/internal/config"
	"github.com/jxiaof/next16-demo/internal/migrations"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		internal.SetLogLevel(cfg.LogLevel)
		return migrations.Up(cfg.Database.DSN())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		internal.SetLogLevel(cfg.LogLevel)
		return migrations.Down(cfg.Database.DSN())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
