// Package cmd provides the CLI commands for the Core.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreos-governance/core/internal/config"
)

var cfgFile string
var stateFilePath string

var rootCmd = &cobra.Command{
	Use:   "sentinel-gate",
	Short: "Core - governance, audit ledger, and policy engine",
	Long: `The Core is an always-on trust and governance layer: a
hash-chained audit ledger, an attestation service, a reaction-driven
governance engine, capability/space policy evaluation, alerting, a
multi-tenant session guard, and a virtual filesystem write gate.

Quick start:
  1. Create a config file: sentinel-gate.yaml
  2. Run: sentinel-gate start

Configuration:
  Config is loaded from sentinel-gate.yaml in the current directory,
  $HOME/.sentinel-gate/, or /etc/sentinel-gate/.

  Environment variables can override config values with the SENTINEL_GATE_ prefix.
  Example: SENTINEL_GATE_SERVER_HTTP_ADDR=:9090

Commands:
  start             Start the Core server
  stop              Stop the running server
  reset             Reset to clean state (remove state.json)
  verify            Verify a signed ledger segment offline
  hash-passphrase   Generate an owner override passphrase hash
  version           Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sentinel-gate.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateFilePath, "state", "", "path to state.json file (default: ./state.json)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
