package vfs

import (
	"fmt"
	"sync"
)

// ConflictStatus is the closed set of states a ConflictRecord can
// occupy. Transitions are OPEN -> {RESOLVED, IGNORED} only; there is
// no path back to OPEN.
type ConflictStatus string

const (
	ConflictOpen     ConflictStatus = "OPEN"
	ConflictResolved ConflictStatus = "RESOLVED"
	ConflictIgnored  ConflictStatus = "IGNORED"
)

// ConflictType distinguishes a duplicate-name collision from a replayed
// offline sync conflict.
type ConflictType string

const (
	ConflictTypeDuplicateName ConflictType = "DUPLICATE_NAME"
	ConflictTypeSyncConflict  ConflictType = "SYNC_CONFLICT"
)

// ConflictSource names how a ConflictRecord entered the store.
type ConflictSource string

const (
	ConflictSourceScan       ConflictSource = "scan"
	ConflictSourceSyncReplay ConflictSource = "sync-replay"
	ConflictSourceManual     ConflictSource = "manual"
)

// ConflictRecord is one append-only conflict entry, session-scoped.
type ConflictRecord struct {
	ID           string
	Type         ConflictType
	ParentPath   string
	CanonicalKey string
	Entries      []string
	Status       ConflictStatus
	Resolution   string
	Source       ConflictSource
	CreatedAt    int64
	ResolvedAt   int64
}

// ConflictSummary is broadcast to subscribers on every store change.
type ConflictSummary struct {
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Ignored  int `json:"ignored"`
	Total    int `json:"total"`
}

// Subscriber is notified with the current ConflictSummary after every
// mutation.
type Subscriber func(ConflictSummary)

// ConflictStore is an append-only, session-scoped store of VFS
// conflicts - duplicate-name collisions from the scanner, conflicts
// replayed from an offline sync log, and manually filed ones. All
// mutation goes through a single mutex guarding the record vector, per
// spec.md §5's "Mutex around record vector" discipline.
type ConflictStore struct {
	mu          sync.Mutex
	clock       func() int64
	records     []ConflictRecord
	nextID      int
	subscribers []Subscriber
}

// NewConflictStore returns an empty ConflictStore. clock supplies
// epoch-millisecond timestamps for CreatedAt/ResolvedAt.
func NewConflictStore(clock func() int64) *ConflictStore {
	return &ConflictStore{clock: clock}
}

// Subscribe registers sub to be called with the current summary after
// every mutation, including the current summary immediately.
func (s *ConflictStore) Subscribe(sub Subscriber) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, sub)
	summary := s.summaryLocked()
	s.mu.Unlock()
	sub(summary)
}

// AddFromScan appends one DUPLICATE_NAME ConflictRecord per
// DuplicateGroup not already represented by an existing non-resolved
// record with the same (canonicalKey, parentPath).
func (s *ConflictStore) AddFromScan(groups []DuplicateGroup) []ConflictRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []ConflictRecord
	for _, g := range groups {
		rec, isNew := s.addLocked(ConflictTypeDuplicateName, ConflictSourceScan, g.ParentPath, g.CanonicalKey, g.Entries)
		if isNew {
			added = append(added, rec)
		}
	}
	s.notifyLocked()
	return added
}

// AddSyncReplay ingests one SYNC_CONFLICT record replayed from an
// offline sync log, deduped the same way as AddFromScan against any
// existing non-resolved record sharing (canonicalKey, parentPath).
// Returns the resulting record and whether it was newly added.
func (s *ConflictStore) AddSyncReplay(parentPath, canonicalKey string, entries []string) (ConflictRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, isNew := s.addLocked(ConflictTypeSyncConflict, ConflictSourceSyncReplay, parentPath, canonicalKey, entries)
	s.notifyLocked()
	return rec, isNew
}

// AddManual files an operator-reported conflict directly, bypassing
// the scanner and sync-replay log. Deduping still applies so a manual
// report of an already-open conflict is idempotent.
func (s *ConflictStore) AddManual(conflictType ConflictType, parentPath, canonicalKey string, entries []string) (ConflictRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, isNew := s.addLocked(conflictType, ConflictSourceManual, parentPath, canonicalKey, entries)
	s.notifyLocked()
	return rec, isNew
}

// addLocked returns the existing non-resolved record for
// (canonicalKey, parentPath) if one exists, otherwise appends and
// returns a new one. Caller holds s.mu and is responsible for
// notifyLocked.
func (s *ConflictStore) addLocked(conflictType ConflictType, source ConflictSource, parentPath, canonicalKey string, entries []string) (ConflictRecord, bool) {
	key := canonicalKey + "\x00" + parentPath
	for _, r := range s.records {
		if r.Status == ConflictResolved {
			continue
		}
		if r.CanonicalKey+"\x00"+r.ParentPath == key {
			return r, false
		}
	}

	s.nextID++
	rec := ConflictRecord{
		ID:           formatConflictID(s.nextID),
		Type:         conflictType,
		ParentPath:   parentPath,
		CanonicalKey: canonicalKey,
		Entries:      append([]string(nil), entries...),
		Status:       ConflictOpen,
		Source:       source,
		CreatedAt:    s.now(),
	}
	s.records = append(s.records, rec)
	return rec, true
}

// Resolve transitions a record to RESOLVED, recording resolution as
// the free-text description of how it was resolved. Returns false if
// id does not name an OPEN record.
func (s *ConflictStore) Resolve(id, resolution string) bool {
	return s.transition(id, ConflictResolved, resolution)
}

// Ignore transitions a record to IGNORED. Returns false if id does not
// name an OPEN record.
func (s *ConflictStore) Ignore(id, resolution string) bool {
	return s.transition(id, ConflictIgnored, resolution)
}

func (s *ConflictStore) transition(id string, target ConflictStatus, resolution string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id && s.records[i].Status == ConflictOpen {
			s.records[i].Status = target
			s.records[i].Resolution = resolution
			s.records[i].ResolvedAt = s.now()
			s.notifyLocked()
			return true
		}
	}
	return false
}

// Records returns a copy of every record currently in the store.
func (s *ConflictStore) Records() []ConflictRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ConflictRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Summary returns the current ConflictSummary.
func (s *ConflictStore) Summary() ConflictSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *ConflictStore) summaryLocked() ConflictSummary {
	var summary ConflictSummary
	for _, r := range s.records {
		switch r.Status {
		case ConflictOpen:
			summary.Open++
		case ConflictResolved:
			summary.Resolved++
		case ConflictIgnored:
			summary.Ignored++
		}
	}
	summary.Total = len(s.records)
	return summary
}

func (s *ConflictStore) notifyLocked() {
	summary := s.summaryLocked()
	for _, sub := range s.subscribers {
		sub(summary)
	}
}

func (s *ConflictStore) now() int64 {
	if s.clock == nil {
		return 0
	}
	return s.clock()
}

func formatConflictID(n int) string {
	return fmt.Sprintf("conflict-%d", n)
}
