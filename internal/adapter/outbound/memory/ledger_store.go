// Package memory provides in-memory implementations of outbound ports,
// intended for local development and tests where durability across
// restarts is not required.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/coreos-governance/core/internal/domain/ledger"
)

// LedgerStore implements ledger.Store with per-chain in-memory slices.
// Thread-safe for concurrent access via sync.RWMutex. Not durable: all
// data is lost on process exit.
type LedgerStore struct {
	mu     sync.RWMutex
	chains map[string][]ledger.AuditRecord
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{chains: make(map[string][]ledger.AuditRecord)}
}

// Head implements ledger.Store.
func (s *LedgerStore) Head(_ context.Context, chainID string) (uint64, string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.chains[chainID]
	if len(recs) == 0 {
		return 0, "", false, nil
	}
	tail := recs[len(recs)-1]
	return tail.Seq, tail.RecordHash, true, nil
}

// Append implements ledger.Store.
func (s *LedgerStore) Append(_ context.Context, rec ledger.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chains[rec.ChainID] = append(s.chains[rec.ChainID], rec)
	return nil
}

// Range implements ledger.Store.
func (s *LedgerStore) Range(_ context.Context, chainID string, fromSeq uint64, count int) ([]ledger.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.chains[chainID]
	upper := fromSeq + uint64(count)

	var out []ledger.AuditRecord
	for _, r := range recs {
		if r.Seq < fromSeq || r.Seq >= upper {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Compile-time interface verification.
var _ ledger.Store = (*LedgerStore)(nil)
