package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreos-governance/core/internal/config"
)

var (
	resetIncludeLedger bool
	resetForce         bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the Core to a clean state",
	Long: `Reset the Core by removing persistent state files.

By default, only state.json (and its backup) is removed. This clears
the per-environment dedup/escalation alert state.

On next start, the Core will boot with a clean state — either from
your YAML config (if present) or completely empty in zero-config mode.

Optional flags:
  --include-ledger  Also remove the hash-chained ledger directory
  --force           Skip confirmation prompt

Examples:
  # Reset state only (interactive confirmation)
  sentinel-gate reset

  # Reset everything without prompting
  sentinel-gate reset --include-ledger --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetIncludeLedger, "include-ledger", false, "Also remove the hash-chained ledger directory")
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	statePath := stateFilePath
	if statePath == "" {
		statePath = os.Getenv("SENTINEL_GATE_STATE_PATH")
	}
	if statePath == "" {
		statePath = "./state.json"
	}

	type target struct {
		path string
		desc string
	}
	var targets []target

	targets = append(targets, target{statePath, "state file"})
	targets = append(targets, target{statePath + ".bak", "state backup"})

	if resetIncludeLedger {
		cfg, err := loadConfigForReset()
		if err == nil && cfg.Ledger.Dir != "" {
			targets = append(targets, target{cfg.Ledger.Dir, "ledger directory"})
		}
	}

	var existing []target
	for _, t := range targets {
		if _, err := os.Stat(t.path); err == nil {
			existing = append(existing, t)
		}
	}

	if len(existing) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to reset — no state files found.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "The following will be removed:")
	for _, t := range existing {
		fmt.Fprintf(os.Stderr, "  - %s (%s)\n", t.path, t.desc)
	}

	if !resetForce {
		fmt.Fprint(os.Stderr, "\nProceed? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt, error irrelevant
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	var errors int
	for _, t := range existing {
		if err := os.RemoveAll(t.path); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR removing %s: %v\n", t.path, err)
			errors++
		} else {
			fmt.Fprintf(os.Stderr, "  Removed %s\n", t.path)
		}
	}

	if errors > 0 {
		return fmt.Errorf("%d file(s) could not be removed", errors)
	}

	fmt.Fprintln(os.Stderr, "\nReset complete. The Core will start fresh on next launch.")
	return nil
}

// loadConfigForReset attempts to load config to discover the ledger
// directory. Returns a zero config on error (non-fatal for reset).
func loadConfigForReset() (*config.CoreConfig, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return &config.CoreConfig{}, err
	}
	cfg.SetDefaults()
	return cfg, nil
}
