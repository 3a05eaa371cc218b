// Package state provides file-based persistence for runtime state that
// must survive process restarts: the alert dispatcher's per-environment
// dedup state. This package provides atomic writes,
// file locking, and backup functionality.
package state

import "time"

// AppState is the top-level structure persisted in state.json.
//
// The VFS conflict store and the attestation key id are deliberately
// not part of this struct: conflict records are session-scoped,
// volatile state by definition, and the key id is always derivable on
// demand from the signing key itself, so persisting either here would
// just be a second, staleness-prone copy of state that already lives
// elsewhere.
type AppState struct {
	// Version is the schema version for forward compatibility. Currently "1".
	Version string `json:"version"`

	// AlertStates holds the alert dispatcher's per-environment dedup and
	// escalation state, keyed by environment name.
	AlertStates map[string]AlertStateEntry `json:"alert_states,omitempty"`

	// CreatedAt is when this state file was first created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when this state file was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// AlertStateEntry mirrors internal/domain/alert.State for one environment.
type AlertStateEntry struct {
	LastFingerprint      string `json:"last_fingerprint,omitempty"`
	LastSentAtMillis     int64  `json:"last_sent_at_millis,omitempty"`
	LastStatus           string `json:"last_status,omitempty"`
	LastViolationHash    string `json:"last_violation_hash,omitempty"`
	RecoverySentAtMillis int64  `json:"recovery_sent_at_millis,omitempty"`
	Escalation30mSentAt  int64  `json:"escalation_30m_sent_at_millis,omitempty"`
	Escalation2hSentAt   int64  `json:"escalation_2h_sent_at_millis,omitempty"`
}
