package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "apimock",
		Short: "Spec-driven mock API servers for test harnesses",
		Long: `apimock serves canned JSON payloads for every path and method declared in
an OpenAPI specification, selected via x-mock-payload vendor extensions.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "directory containing *-mock.yaml files")

	rootCmd.AddCommand(newUpCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newValidateCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
