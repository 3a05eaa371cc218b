package attestation

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"

	"github.com/coreos-governance/core/internal/apperror"
	"github.com/coreos-governance/core/internal/domain/ledger"
)

// Clock lets tests freeze CreatedAt.
type Clock func() int64

// Sign produces a Manifest for seg. The signed message is the ASCII
// bytes of seg.SegmentDigest's lowercase hex string, not the raw
// 32-byte digest (see DESIGN.md's Open Question decision #3).
func Sign(ctx context.Context, seg ledger.Segment, segmentName, toolVersion string, kp KeyProvider, now Clock) (Manifest, error) {
	private, _, err := kp.SigningKeyPair(ctx)
	if err != nil {
		return Manifest{}, apperror.Wrap(apperror.KindIntegrity, "attestation.key_unavailable", "could not obtain signing key", err)
	}
	keyID, err := kp.PublicKeyID(ctx)
	if err != nil {
		return Manifest{}, apperror.Wrap(apperror.KindIntegrity, "attestation.key_id_unavailable", "could not derive public key id", err)
	}

	sig := ed25519.Sign(ed25519.PrivateKey(private), []byte(seg.SegmentDigest))

	ts := int64(0)
	if now != nil {
		ts = now()
	}

	return Manifest{
		Version:       ManifestVersion,
		ToolVersion:   toolVersion,
		ChainID:       seg.ChainID,
		SegmentName:   segmentName,
		SeqStart:      seg.SeqStart,
		SeqEnd:        seg.SeqEnd,
		RecordCount:   seg.RecordCount,
		HeadHash:      seg.HeadHash,
		SegmentDigest: seg.SegmentDigest,
		Signature:     hex.EncodeToString(sig),
		Algorithm:     Algorithm,
		PublicKeyID:   keyID,
		CreatedAt:     ts,
	}, nil
}
