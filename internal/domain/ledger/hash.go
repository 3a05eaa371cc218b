package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// computeRecordHash implements spec.md §4.2's fixed byte order:
//
//	SHA-256( canonical(payload) || prevHashBytes || beUint64(seq) || chainIdBytes || beUint64(recordedAt) )
//
// prevHash is decoded from hex to its 32 raw bytes before concatenation;
// seq and recordedAt are each encoded as 8-byte big-endian integers;
// chainId is its raw UTF-8 bytes. This exact order is the reference
// test-vector encoding documented in DESIGN.md.
func computeRecordHash(payloadCanonical []byte, prevHash string, seq uint64, chainID string, recordedAt int64) (string, error) {
	prevHashBytes, err := hex.DecodeString(prevHash)
	if err != nil {
		return "", fmt.Errorf("ledger: prevHash is not valid hex: %w", err)
	}
	if len(prevHashBytes) != sha256.Size {
		return "", fmt.Errorf("ledger: prevHash must decode to %d bytes, got %d", sha256.Size, len(prevHashBytes))
	}

	var seqBuf, tsBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)
	binary.BigEndian.PutUint64(tsBuf[:], uint64(recordedAt))

	h := sha256.New()
	h.Write(payloadCanonical)
	h.Write(prevHashBytes)
	h.Write(seqBuf[:])
	h.Write([]byte(chainID))
	h.Write(tsBuf[:])
	return hex.EncodeToString(h.Sum(nil)), nil
}
