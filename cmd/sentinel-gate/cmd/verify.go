package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreos-governance/core/internal/domain/attestation"
)

var (
	verifySegmentPath  string
	verifyManifestPath string
	verifyPublicKeyHex string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an audit segment against its attestation manifest, fully offline",
	Long: `Verify re-derives the chain, digest, and signature of an audit
segment without contacting a running Core or reading any other state.
It needs only the segment's JSONL file, its manifest, and the signing
public key (hex-encoded) - no platform code needs to be running.

Example:
  sentinel-gate verify \
    --segment ledger/chain-01/segment-000123.jsonl \
    --manifest ledger/chain-01/segment-000123.manifest.json \
    --pubkey 3b1f...e02a`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifySegmentPath, "segment", "", "path to the segment JSONL file")
	verifyCmd.Flags().StringVar(&verifyManifestPath, "manifest", "", "path to the segment's manifest JSON file")
	verifyCmd.Flags().StringVar(&verifyPublicKeyHex, "pubkey", "", "hex-encoded ed25519 public key")
	verifyCmd.MarkFlagRequired("segment")
	verifyCmd.MarkFlagRequired("manifest")
	verifyCmd.MarkFlagRequired("pubkey")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	jsonl, err := os.ReadFile(verifySegmentPath)
	if err != nil {
		return fmt.Errorf("read segment: %w", err)
	}

	manifestBytes, err := os.ReadFile(verifyManifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var manifest attestation.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	publicKey, err := hex.DecodeString(verifyPublicKeyHex)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}

	result := attestation.Verify(jsonl, manifest, publicKey)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("segment verification failed: %d failure(s)", len(result.Failures))
	}
	return nil
}
