package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/coreos-governance/core/internal/domain/audit"
	"github.com/coreos-governance/core/internal/domain/ledger"
)

// memLedgerStore is a minimal in-memory ledger.Store for service-layer
// tests; the durable file-backed Store lives in adapter/outbound/ledger.
type memLedgerStore struct {
	byChain map[string][]ledger.AuditRecord
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{byChain: make(map[string][]ledger.AuditRecord)}
}

func (m *memLedgerStore) Head(_ context.Context, chainID string) (uint64, string, bool, error) {
	recs := m.byChain[chainID]
	if len(recs) == 0 {
		return 0, "", false, nil
	}
	last := recs[len(recs)-1]
	return last.Seq, last.RecordHash, true, nil
}

func (m *memLedgerStore) Append(_ context.Context, rec ledger.AuditRecord) error {
	m.byChain[rec.ChainID] = append(m.byChain[rec.ChainID], rec)
	return nil
}

func (m *memLedgerStore) Range(_ context.Context, chainID string, fromSeq uint64, count int) ([]ledger.AuditRecord, error) {
	recs := m.byChain[chainID]
	var out []ledger.AuditRecord
	for _, r := range recs {
		if r.Seq >= fromSeq && len(out) < count {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func mustTestEnvelope(t *testing.T, event audit.Event) audit.Envelope {
	t.Helper()
	env, err := audit.NewEnvelope(audit.NewEnvelopeParams{Event: event, TraceID: "trace-1"}, nil)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func TestLedgerServiceAppendIsSynchronous(t *testing.T) {
	store := newMemLedgerStore()
	s := NewLedgerService(ledger.New(store), nil)

	rec, err := s.Append(context.Background(), "vfs", mustTestEnvelope(t, audit.Events["VFSWriteAllowed"]))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.Seq != 0 {
		t.Fatalf("Seq = %d, want 0", rec.Seq)
	}

	records, err := s.GetRecords(context.Background(), "vfs", 0, 10)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
}

func TestLedgerServiceEnqueueAppendDrainsAsync(t *testing.T) {
	store := newMemLedgerStore()
	s := NewLedgerService(ledger.New(store), nil)
	s.Start(context.Background())
	defer s.Stop()

	s.EnqueueAppend("governance", mustTestEnvelope(t, audit.Events["SecurityNonceReplay"]))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		records, err := s.GetRecords(context.Background(), "governance", 0, 10)
		if err != nil {
			t.Fatalf("GetRecords: %v", err)
		}
		if len(records) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("enqueued envelope was never appended")
}

func TestLedgerServiceEnqueueAppendDropsUnderBackpressure(t *testing.T) {
	store := newMemLedgerStore()
	s := NewLedgerService(ledger.New(store), nil, WithQueueSize(0), WithLedgerSendTimeout(0))
	// Worker never started: the queue never drains, so every enqueue
	// with a zero-length buffer and zero send timeout drops immediately.
	s.EnqueueAppend("governance", mustTestEnvelope(t, audit.Events["SecurityNonceReplay"]))

	if got := s.DroppedRecords(); got != 1 {
		t.Fatalf("DroppedRecords() = %d, want 1", got)
	}
}

func TestLedgerServiceValidateChainPassthrough(t *testing.T) {
	store := newMemLedgerStore()
	s := NewLedgerService(ledger.New(store), nil)

	rec, err := s.Append(context.Background(), "vfs", mustTestEnvelope(t, audit.Events["VFSWriteAllowed"]))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	result := s.ValidateChain([]ledger.AuditRecord{rec})
	if !result.Valid {
		t.Fatalf("ValidateChain: %+v", result)
	}
}
