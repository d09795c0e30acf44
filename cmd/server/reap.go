package main

import (
	"github.com/jxiaof/next16-demo/internal"
	"github.com/jxiaof/next16-demo/internal/config"
	"github.com/spf13/cobra"
)

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Deletes expired sessions and password reset tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		app, err := internal.NewApplication(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Reap(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(reapCmd)
}
