package service

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos-governance/core/internal/apperror"
	"github.com/coreos-governance/core/internal/domain/attestation"
	"github.com/coreos-governance/core/internal/domain/ledger"
)

// AttestationService orchestrates "cut and sign": reading a contiguous
// range of durable ledger records, cutting them into a Segment, and
// signing the segment. Verify and CheckContinuity need no live ledger
// access and stay direct domain calls for callers (the CLI, the admin
// adapter) that already have the JSONL bytes and a manifest in hand.
type AttestationService struct {
	ledger      *LedgerService
	keyProvider attestation.KeyProvider
	toolVersion string
}

// NewAttestationService builds an AttestationService.
func NewAttestationService(l *LedgerService, kp attestation.KeyProvider, toolVersion string) *AttestationService {
	return &AttestationService{ledger: l, keyProvider: kp, toolVersion: toolVersion}
}

// CutAndSign reads [fromSeq, fromSeq+count) from chainID, cuts it into
// a Segment named segmentName, and signs it.
func (s *AttestationService) CutAndSign(ctx context.Context, chainID string, fromSeq uint64, count int, segmentName string) (attestation.Manifest, error) {
	records, err := s.ledger.GetRecords(ctx, chainID, fromSeq, count)
	if err != nil {
		return attestation.Manifest{}, apperror.Wrap(apperror.KindTransient, "attestation.range_read_failed", "could not read ledger range", err)
	}
	if len(records) == 0 {
		return attestation.Manifest{}, apperror.New(apperror.KindNotFound, "attestation.empty_range", "no records in the requested range")
	}

	seg, err := ledger.CutSegment(chainID, records[0].Seq, records[len(records)-1].Seq, records)
	if err != nil {
		return attestation.Manifest{}, apperror.Wrap(apperror.KindIntegrity, "attestation.cut_failed", "could not cut segment", err)
	}

	manifest, err := attestation.Sign(ctx, seg, segmentName, s.toolVersion, s.keyProvider, func() int64 { return time.Now().UnixMilli() })
	if err != nil {
		return attestation.Manifest{}, err
	}
	return manifest, nil
}

// Verify is a thin passthrough to the pure domain verifier, for
// callers (the admin HTTP surface) that prefer calling through the
// service layer uniformly.
func (s *AttestationService) Verify(jsonl []byte, manifest attestation.Manifest, publicKey []byte) attestation.VerifyResult {
	return attestation.Verify(jsonl, manifest, publicKey)
}

// CheckContinuity is a thin passthrough to the pure domain check.
func (s *AttestationService) CheckContinuity(manifests []attestation.Manifest) []attestation.ContinuityBreak {
	return attestation.CheckContinuity(manifests)
}

// PublicKey returns the verification key for manifests this service
// signs, for handing to an offline verifier.
func (s *AttestationService) PublicKey(ctx context.Context) ([]byte, error) {
	pub, err := s.keyProvider.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("attestation: public key unavailable: %w", err)
	}
	return pub, nil
}
