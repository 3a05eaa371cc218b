package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreos-governance/core/internal/domain/guard"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-passphrase [passphrase]",
	Short: "Generate an Argon2id hash for the owner override passphrase",
	Long: `Generate an Argon2id PHC-format hash of a passphrase for use in config.

The output can be placed directly in the governance.owner_passphrase_hash
field. The Core never stores the raw passphrase; only the hash is
checked against an owner override request.

Example:
  sentinel-gate hash-passphrase "my-owner-passphrase"

Security note: the passphrase will appear in shell history.
Consider clearing history after use or using an environment variable:
  sentinel-gate hash-passphrase "$OWNER_PASSPHRASE"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := guard.HashPassphrase(args[0])
		if err != nil {
			return fmt.Errorf("hash passphrase: %w", err)
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}
