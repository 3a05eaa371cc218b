// Package alert provides outbound adapters for the domain alert
// dispatcher: durable dedup-state persistence and notification sinks.
package alert

import (
	"log/slog"
	"sync"

	"github.com/coreos-governance/core/internal/adapter/outbound/state"
	"github.com/coreos-governance/core/internal/domain/alert"
)

// FileStateStore implements alert.StateStore on top of the shared
// state.FileStateStore, keeping one AlertStateEntry per environment
// inside the runtime state file.
type FileStateStore struct {
	backing *state.FileStateStore
	mu      sync.Mutex
}

// NewFileStateStore wraps a state.FileStateStore for use as an
// alert.StateStore.
func NewFileStateStore(path string, logger *slog.Logger) *FileStateStore {
	return &FileStateStore{backing: state.NewFileStateStore(path, logger)}
}

// Load implements alert.StateStore.
func (s *FileStateStore) Load(environment string) (alert.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, err := s.backing.Load()
	if err != nil {
		return alert.State{}, false, err
	}
	entry, ok := app.AlertStates[environment]
	if !ok {
		return alert.State{}, false, nil
	}
	return toDomainState(entry), true, nil
}

// Save implements alert.StateStore.
func (s *FileStateStore) Save(environment string, st alert.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, err := s.backing.Load()
	if err != nil {
		return err
	}
	if app.AlertStates == nil {
		app.AlertStates = map[string]state.AlertStateEntry{}
	}
	app.AlertStates[environment] = toEntry(st)
	return s.backing.Save(app)
}

func toEntry(st alert.State) state.AlertStateEntry {
	return state.AlertStateEntry{
		LastFingerprint:      st.LastFingerprint,
		LastSentAtMillis:     st.LastSentAt,
		LastStatus:           string(st.LastStatus),
		LastViolationHash:    st.LastViolationHash,
		RecoverySentAtMillis: st.RecoverySentAt,
		Escalation30mSentAt:  st.Escalation30mSentAt,
		Escalation2hSentAt:   st.Escalation2hSentAt,
	}
}

func toDomainState(e state.AlertStateEntry) alert.State {
	return alert.State{
		LastFingerprint:      e.LastFingerprint,
		LastSentAt:           e.LastSentAtMillis,
		LastStatus:           alert.SystemStatus(e.LastStatus),
		LastViolationHash:    e.LastViolationHash,
		RecoverySentAt:       e.RecoverySentAtMillis,
		Escalation30mSentAt:  e.Escalation30mSentAt,
		Escalation2hSentAt:   e.Escalation2hSentAt,
	}
}

// Compile-time interface verification.
var _ alert.StateStore = (*FileStateStore)(nil)
