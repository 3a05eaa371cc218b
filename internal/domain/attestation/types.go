// Package attestation signs and offline-verifies contiguous ledger
// segments using Ed25519, producing a manifest a third party can check
// without any platform code running.
package attestation

import "context"

// Algorithm is the normative signature algorithm label.
const Algorithm = "ed25519"

// ManifestVersion is the manifest schema version.
const ManifestVersion = "1.0"

// Manifest describes one signed, contiguous ledger segment.
type Manifest struct {
	Version       string `json:"version"`
	ToolVersion   string `json:"toolVersion"`
	ChainID       string `json:"chainId"`
	SegmentName   string `json:"segmentName"`
	SeqStart      uint64 `json:"seqStart"`
	SeqEnd        uint64 `json:"seqEnd"`
	RecordCount   int    `json:"recordCount"`
	HeadHash      string `json:"headHash"`
	SegmentDigest string `json:"segmentDigest"`
	Signature     string `json:"signature"`
	Algorithm     string `json:"algorithm"`
	PublicKeyID   string `json:"publicKeyId"`
	CreatedAt     int64  `json:"createdAt"`
}

// KeyProvider is polymorphic over deterministic-test and
// environment-injected implementations.
type KeyProvider interface {
	// SigningKeyPair returns the private key used to sign, and its
	// matching public key.
	SigningKeyPair(ctx context.Context) (private []byte, public []byte, err error)
	// PublicKey returns the public key used to verify signatures
	// produced by SigningKeyPair.
	PublicKey(ctx context.Context) (public []byte, err error)
	// PublicKeyID returns the first 16 hex characters of SHA-256 over
	// the public key bytes.
	PublicKeyID(ctx context.Context) (string, error)
}

// VerifyResult is the outcome of an offline segment verification. It
// never throws; failures accumulate descriptive reasons.
type VerifyResult struct {
	OK       bool
	Failures []string
	Stats    VerifyStats
}

// VerifyStats summarizes what the verifier observed about the data.
type VerifyStats struct {
	RecordCount   int
	ChainID       string
	SeqStart      uint64
	SeqEnd        uint64
	SegmentDigest string
}

// ContinuityBreak describes a gap or chain mismatch between two
// adjacent manifests sorted by seqStart.
type ContinuityBreak struct {
	Index  int
	Reason string
}
