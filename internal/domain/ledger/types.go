// Package ledger implements the append-only, hash-chained audit record
// store: canonical JSON encoding, per-chain hash linkage, range reads,
// segment cuts for attestation, and context-field redaction that
// preserves hashes.
package ledger

import (
	"context"

	"github.com/coreos-governance/core/internal/domain/audit"
)

// GenesisHash is the prevHash value for the first record in a chain:
// 32 zero bytes, hex-encoded (64 hex characters).
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// AuditRecord is one immutable ledger entry.
type AuditRecord struct {
	ChainID    string        `json:"chainId"`
	Seq        uint64        `json:"seq"`
	PrevHash   string        `json:"prevHash"`
	Payload    audit.Envelope `json:"payload"`
	RecordedAt int64         `json:"recordedAt"`
	RecordHash string        `json:"recordHash"`
}

// Segment is a contiguous serialized range of one chain.
type Segment struct {
	ChainID       string
	SeqStart      uint64
	SeqEnd        uint64
	Bytes         []byte
	SegmentDigest string
	HeadHash      string
	RecordCount   int
}

// ValidateResult is the outcome of validating a slice of records.
type ValidateResult struct {
	Valid          bool
	FirstBrokenSeq *uint64
	Err            error
}

// Store is the outbound port the Ledger uses for durable head tracking,
// append, and range reads. Implementations must serialize Append per
// chainID themselves or rely on the Ledger's own per-chain locking.
type Store interface {
	// Head returns the current chain head, or exists=false for an empty chain.
	Head(ctx context.Context, chainID string) (seq uint64, prevHash string, exists bool, err error)
	// Append durably stores rec. Must not partially succeed.
	Append(ctx context.Context, rec AuditRecord) error
	// Range returns records [fromSeq, fromSeq+count) for chainID, in order.
	Range(ctx context.Context, chainID string, fromSeq uint64, count int) ([]AuditRecord, error)
}
