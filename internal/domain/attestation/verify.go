package attestation

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/coreos-governance/core/internal/domain/ledger"
)

// Verify performs the fully offline segment check: parse JSONL,
// validate chain linkage, recompute the digest, verify the signature,
// and cross-check manifest fields against the recomputed data. It
// never panics; every failure is collected and returned in the result.
func Verify(jsonl []byte, manifest Manifest, publicKey []byte) VerifyResult {
	var failures []string

	records, parseErr := parseJSONL(jsonl)
	if parseErr != nil {
		failures = append(failures, fmt.Sprintf("parse error: %v", parseErr))
	}

	if len(records) > 0 {
		vr := ledger.ValidateChain(records)
		if !vr.Valid {
			failures = append(failures, fmt.Sprintf("chain validation failed: %v", vr.Err))
		}
	}

	sum := sha256.Sum256(jsonl)
	recomputedDigest := hex.EncodeToString(sum[:])
	if recomputedDigest != manifest.SegmentDigest {
		failures = append(failures, fmt.Sprintf("digest mismatch: recomputed %s, manifest has %s", recomputedDigest, manifest.SegmentDigest))
	}

	if manifest.Algorithm != Algorithm {
		failures = append(failures, fmt.Sprintf("unknown algorithm %q, expected %q", manifest.Algorithm, Algorithm))
	} else {
		sig, err := hex.DecodeString(manifest.Signature)
		if err != nil {
			failures = append(failures, fmt.Sprintf("signature is not valid hex: %v", err))
		} else if len(publicKey) != ed25519.PublicKeySize {
			failures = append(failures, fmt.Sprintf("public key has wrong size %d", len(publicKey)))
		} else if !ed25519.Verify(ed25519.PublicKey(publicKey), []byte(manifest.SegmentDigest), sig) {
			failures = append(failures, "signature verification failed")
		}
	}

	if len(records) > 0 {
		first, last := records[0], records[len(records)-1]
		if first.Seq != manifest.SeqStart {
			failures = append(failures, fmt.Sprintf("seqStart mismatch: data has %d, manifest has %d", first.Seq, manifest.SeqStart))
		}
		if last.Seq != manifest.SeqEnd {
			failures = append(failures, fmt.Sprintf("seqEnd mismatch: data has %d, manifest has %d", last.Seq, manifest.SeqEnd))
		}
		if len(records) != manifest.RecordCount {
			failures = append(failures, fmt.Sprintf("recordCount mismatch: data has %d, manifest has %d", len(records), manifest.RecordCount))
		}
		if first.ChainID != manifest.ChainID {
			failures = append(failures, fmt.Sprintf("chainId mismatch: data has %q, manifest has %q", first.ChainID, manifest.ChainID))
		}
		if last.RecordHash != manifest.HeadHash {
			failures = append(failures, fmt.Sprintf("headHash mismatch: data has %q, manifest has %q", last.RecordHash, manifest.HeadHash))
		}
	}

	stats := VerifyStats{
		RecordCount:   len(records),
		ChainID:       manifest.ChainID,
		SeqStart:      manifest.SeqStart,
		SeqEnd:        manifest.SeqEnd,
		SegmentDigest: recomputedDigest,
	}

	return VerifyResult{OK: len(failures) == 0, Failures: failures, Stats: stats}
}

// parseJSONL splits jsonl on LF and decodes each non-empty line as an
// AuditRecord.
func parseJSONL(jsonl []byte) ([]ledger.AuditRecord, error) {
	lines := bytes.Split(jsonl, []byte("\n"))
	var records []ledger.AuditRecord
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec ledger.AuditRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CheckContinuity verifies that, over manifests sorted by SeqStart, each
// adjacent pair is contiguous within the same chain.
func CheckContinuity(manifests []Manifest) []ContinuityBreak {
	sorted := make([]Manifest, len(manifests))
	copy(sorted, manifests)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SeqStart < sorted[j].SeqStart })

	var breaks []ContinuityBreak
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if prev.ChainID != curr.ChainID {
			breaks = append(breaks, ContinuityBreak{Index: i, Reason: fmt.Sprintf("chainId changed from %q to %q", prev.ChainID, curr.ChainID)})
			continue
		}
		if prev.SeqEnd+1 != curr.SeqStart {
			breaks = append(breaks, ContinuityBreak{Index: i, Reason: fmt.Sprintf("gap between seqEnd=%d and seqStart=%d", prev.SeqEnd, curr.SeqStart)})
		}
	}
	return breaks
}
