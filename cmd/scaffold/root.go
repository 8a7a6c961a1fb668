package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Admin resource controller with a uniform action dispatch pipeline",
	Long: `Scaffold routes named operations against pluggable resource modules
through a uniform pipeline: resolve the entity, check authorization,
execute the action handler, and normalize the result.

Quick start:
  scaffold serve     # Start the HTTP server with the demo modules
  scaffold modules   # List registered modules and their actions`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "scaffold.yaml", "config file path")
}
