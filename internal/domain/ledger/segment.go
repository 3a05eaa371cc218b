package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CutSegment serializes records (already ordered, contiguous, same
// chain) as JSONL: UTF-8, LF line terminators, no trailing newline,
// one canonical record per line. It computes the segment digest and
// head hash. records must be non-empty.
func CutSegment(chainID string, seqStart, seqEnd uint64, records []AuditRecord) (Segment, error) {
	if len(records) == 0 {
		return Segment{}, fmt.Errorf("ledger: cannot cut an empty segment")
	}

	var buf bytes.Buffer
	for i, r := range records {
		line, err := Canonical(r)
		if err != nil {
			return Segment{}, fmt.Errorf("ledger: canonicalize record seq=%d: %w", r.Seq, err)
		}
		buf.Write(line)
		if i < len(records)-1 {
			buf.WriteByte('\n')
		}
	}

	sum := sha256.Sum256(buf.Bytes())
	return Segment{
		ChainID:       chainID,
		SeqStart:      seqStart,
		SeqEnd:        seqEnd,
		Bytes:         buf.Bytes(),
		SegmentDigest: hex.EncodeToString(sum[:]),
		HeadHash:      records[len(records)-1].RecordHash,
		RecordCount:   len(records),
	}, nil
}
