package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "next16",
	Short: "Account and session backend for the next16 demo",
	Long: `Account and session backend for the next16 demo. Usage:

	next16 serve
	next16 migrate up
	next16 reap
`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
