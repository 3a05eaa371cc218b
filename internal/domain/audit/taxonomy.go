// Package audit defines the frozen, versioned audit event vocabulary and
// the canonical envelope shape every subsystem emits before an event
// reaches the ledger.
package audit

import (
	"fmt"
	"regexp"
)

// Version is the taxonomy semver, bumped on any addition to Events.
const Version = "1.3.0"

// Group is the top-level namespace an Event belongs to.
type Group string

const (
	GroupJobLifecycle Group = "job.lifecycle"
	GroupJobOps        Group = "job.ops"
	GroupWorker        Group = "worker"
	GroupAuth          Group = "auth"
	GroupPolicy        Group = "policy"
	GroupGovernance    Group = "governance"
	GroupSystem        Group = "system"
	GroupSecurity      Group = "security"
	GroupBrain         Group = "brain"
	GroupProcess       Group = "process.lifecycle"
	GroupUX            Group = "ux"
)

// knownGroups is the closed set of permitted group prefixes.
var knownGroups = map[Group]struct{}{
	GroupJobLifecycle: {},
	GroupJobOps:        {},
	GroupWorker:        {},
	GroupAuth:          {},
	GroupPolicy:        {},
	GroupGovernance:    {},
	GroupSystem:        {},
	GroupSecurity:      {},
	GroupBrain:         {},
	GroupProcess:       {},
	GroupUX:            {},
}

// Event is a closed, dotted-path event identifier: group.[category.]action.
type Event string

// segmentPattern matches a single `[a-z][a-z0-9_]*` segment.
var segmentPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// eventPattern matches the full dotted path, 2 or 3 segments.
var eventPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*){1,2}$`)

// Events is the frozen taxonomy: name -> dotted-path value. Append-only;
// removing a member is forbidden. Bump Version on any addition.
var Events = map[string]Event{
	// job.lifecycle
	"JobCreated":   "job.lifecycle.created",
	"JobStarted":   "job.lifecycle.started",
	"JobCompleted": "job.lifecycle.completed",
	"JobFailed":    "job.lifecycle.failed",
	"JobCancelled": "job.lifecycle.cancelled",
	"JobRetried":   "job.lifecycle.retried",

	// job.ops
	"JobOpsPaused":  "job.ops.paused",
	"JobOpsResumed": "job.ops.resumed",
	"JobOpsPurged":  "job.ops.purged",

	// worker
	"WorkerRegistered":   "worker.registered",
	"WorkerHeartbeat":    "worker.heartbeat",
	"WorkerDeregistered": "worker.deregistered",
	"WorkerCrashed":      "worker.crashed",

	// auth
	"AuthLogin":            "auth.login",
	"AuthLogout":           "auth.logout",
	"AuthLoginFailed":      "auth.login_failed",
	"AuthSessionExpired":   "auth.session_expired",
	"AuthSessionRevoked":   "auth.session_revoked",
	"AuthMembershipDenied": "auth.membership_denied",

	// policy
	"PolicyCheckPassed":    "policy.check_passed",
	"PolicyCheckDenied":    "policy.check_denied",
	"PolicyStepupRequired": "policy.stepup_required",
	"PolicySpaceDenied":    "policy.space_denied",
	"PolicyRuleUpdated":    "policy.rule_updated",

	// governance
	"GovernanceFreeze":         "governance.freeze",
	"GovernanceThrottle":       "governance.throttle",
	"GovernanceLock":           "governance.lock",
	"GovernanceBlockPromotion": "governance.block_promotion",
	"GovernanceOverride":       "governance.override",
	"GovernanceUnlock":         "governance.unlock",

	// system
	"SystemStartup":        "system.startup",
	"SystemShutdown":       "system.shutdown",
	"SystemIntegrityCheck": "system.integrity_check",
	"SystemConfigReload":   "system.config_reload",

	// security
	"SecurityNonceReplay":   "security.nonce_replay",
	"SecurityTamperDetect":  "security.tamper_detect",
	"SecuritySignatureFail": "security.signature_fail",

	// brain
	"BrainInferenceStart": "brain.inference_start",
	"BrainInferenceDone":  "brain.inference_done",
	"BrainGuardrailTrip":  "brain.guardrail_trip",

	// process.lifecycle
	"ProcessSpawned":   "process.lifecycle.spawned",
	"ProcessExited":    "process.lifecycle.exited",
	"ProcessKilled":    "process.lifecycle.killed",

	// ux (UX-origin groups, emitted by the out-of-scope platform layer)
	"UXAlertAcknowledged": "ux.alert_acknowledged",
	"UXConflictResolved":  "ux.conflict_resolved",

	// vfs (folded under security/policy conceptually, kept flat for the gate)
	"VFSWriteAllowed":     "security.vfs_write_allowed",
	"VFSWriteDenied":      "security.vfs_write_denied",
	"VFSConflictFound":    "security.vfs_conflict_found",
	"VFSGovernanceBlock":  "security.vfs_governance_block",
}

// eventValues indexes the values of Events for IsKnownEvent's
// constant-time membership test.
var eventValues = func() map[Event]struct{} {
	m := make(map[Event]struct{}, len(Events))
	for _, v := range Events {
		m[v] = struct{}{}
	}
	return m
}()

// eventGroup extracts the leading group token ("a.b.c" -> "a" or "a.b"
// for two-token groups like process.lifecycle/job.lifecycle/job.ops).
func eventGroup(e Event) Group {
	s := string(e)
	// two-token groups are matched by explicit prefix since "." is also
	// the category separator.
	for _, g := range []Group{GroupJobLifecycle, GroupJobOps, GroupProcess} {
		if len(s) > len(g) && s[:len(g)] == string(g) && s[len(g)] == '.' {
			return g
		}
	}
	// single-token group is everything up to the first dot.
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return Group(s[:i])
		}
	}
	return Group(s)
}

// IsKnownEvent reports whether e is a registered taxonomy member and
// conforms to the segment/shape rules. Membership test is O(1); shape
// validation is a fixed-cost regex match.
func IsKnownEvent(e Event) bool {
	if !eventPattern.MatchString(string(e)) {
		return false
	}
	if _, ok := knownGroups[eventGroup(e)]; !ok {
		return false
	}
	_, ok := eventValues[e]
	return ok
}

// ValidateTaxonomy checks the invariants of Events: unique values, unique
// keys (guaranteed by map), every value well-formed and group-prefixed.
// Used by the taxonomy's own test suite and available for startup
// self-checks.
func ValidateTaxonomy() error {
	if len(Events) < 40 {
		return fmt.Errorf("taxonomy has %d events, need at least 40", len(Events))
	}
	seen := make(map[Event]string, len(Events))
	for name, v := range Events {
		if !eventPattern.MatchString(string(v)) {
			return fmt.Errorf("event %q: value %q does not match segment shape", name, v)
		}
		if _, ok := knownGroups[eventGroup(v)]; !ok {
			return fmt.Errorf("event %q: value %q has unknown group prefix", name, v)
		}
		if prior, dup := seen[v]; dup {
			return fmt.Errorf("event value %q registered twice: %q and %q", v, prior, name)
		}
		seen[v] = name
	}
	return nil
}
