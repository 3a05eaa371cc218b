package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos-governance/core/internal/domain/attestation"
	"github.com/coreos-governance/core/internal/domain/audit"
	"github.com/coreos-governance/core/internal/domain/ledger"
)

type verifyMemStore struct {
	recs []ledger.AuditRecord
}

func (m *verifyMemStore) Head(_ context.Context, _ string) (uint64, string, bool, error) {
	if len(m.recs) == 0 {
		return 0, "", false, nil
	}
	last := m.recs[len(m.recs)-1]
	return last.Seq, last.RecordHash, true, nil
}

func (m *verifyMemStore) Append(_ context.Context, rec ledger.AuditRecord) error {
	m.recs = append(m.recs, rec)
	return nil
}

func (m *verifyMemStore) Range(_ context.Context, _ string, fromSeq uint64, count int) ([]ledger.AuditRecord, error) {
	var out []ledger.AuditRecord
	for _, r := range m.recs {
		if r.Seq >= fromSeq && len(out) < count {
			out = append(out, r)
		}
	}
	return out, nil
}

func buildVerifyFixture(t *testing.T) (segmentPath, manifestPath, pubKeyHex string) {
	t.Helper()
	ctx := context.Background()
	store := &verifyMemStore{}
	l := ledger.New(store)

	env, err := audit.NewEnvelope(audit.NewEnvelopeParams{Event: audit.Events["SystemStartup"], TraceID: "t"}, nil)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if _, err := l.Append(ctx, "c1", env); err != nil {
		t.Fatalf("Append: %v", err)
	}

	seg, err := ledger.CutSegment("c1", 0, 0, store.recs)
	if err != nil {
		t.Fatalf("CutSegment: %v", err)
	}

	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	kp, err := attestation.NewDeterministicTestProvider(seed)
	if err != nil {
		t.Fatalf("NewDeterministicTestProvider: %v", err)
	}

	manifest, err := attestation.Sign(ctx, seg, "segment-0000.jsonl", "test-tool/1.0", kp, func() int64 { return 1700000000000 })
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	pub, err := kp.PublicKey(ctx)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	dir := t.TempDir()
	segmentPath = filepath.Join(dir, "segment-0000.jsonl")
	if err := os.WriteFile(segmentPath, seg.Bytes, 0600); err != nil {
		t.Fatalf("write segment: %v", err)
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	manifestPath = filepath.Join(dir, "segment-0000.manifest.json")
	if err := os.WriteFile(manifestPath, manifestBytes, 0600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	return segmentPath, manifestPath, hex.EncodeToString(pub)
}

func TestVerifyCmd_Registered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "verify" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected rootCmd to register the verify command")
	}
}

func TestRunVerify_ValidSegmentSucceeds(t *testing.T) {
	segmentPath, manifestPath, pubKeyHex := buildVerifyFixture(t)
	verifySegmentPath, verifyManifestPath, verifyPublicKeyHex = segmentPath, manifestPath, pubKeyHex

	var out bytes.Buffer
	verifyCmd.SetOut(&out)
	if err := runVerify(verifyCmd, nil); err != nil {
		t.Fatalf("runVerify: %v", err)
	}

	var result attestation.VerifyResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if !result.OK {
		t.Errorf("expected OK=true, failures=%v", result.Failures)
	}
}

func TestRunVerify_TamperedSegmentFails(t *testing.T) {
	segmentPath, manifestPath, pubKeyHex := buildVerifyFixture(t)

	raw, err := os.ReadFile(segmentPath)
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	raw[0] ^= 0xFF
	if err := os.WriteFile(segmentPath, raw, 0600); err != nil {
		t.Fatalf("rewrite segment: %v", err)
	}

	verifySegmentPath, verifyManifestPath, verifyPublicKeyHex = segmentPath, manifestPath, pubKeyHex

	var out bytes.Buffer
	verifyCmd.SetOut(&out)
	if err := runVerify(verifyCmd, nil); err == nil {
		t.Fatal("expected runVerify to return an error for a tampered segment")
	}
}

func TestRunVerify_MissingSegmentFileReturnsError(t *testing.T) {
	_, manifestPath, pubKeyHex := buildVerifyFixture(t)
	verifySegmentPath, verifyManifestPath, verifyPublicKeyHex = filepath.Join(t.TempDir(), "missing.jsonl"), manifestPath, pubKeyHex

	if err := runVerify(verifyCmd, nil); err == nil {
		t.Fatal("expected runVerify to return an error for a missing segment file")
	}
}
