package governance

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/coreos-governance/core/internal/domain/audit"
)

// Engine owns process-local governance state. All transitions go
// through a single critical section; sliding-window counters are
// guarded together with the state they inform.
type Engine struct {
	mu sync.Mutex

	cfg   Config
	clock func() int64 // epoch milliseconds

	state State

	policyWindow slidingWindow
	nonceWindow  slidingWindow

	reactions []Reaction
}

// NewEngine constructs an Engine in NORMAL mode, triggered by
// SYSTEM_INIT.
func NewEngine(cfg Config, clock func() int64) *Engine {
	cfg = cfg.withDefaults()
	now := clock()
	e := &Engine{
		cfg:   cfg,
		clock: clock,
		state: State{
			Mode:        ModeNormal,
			Reason:      "system initialized",
			TriggeredAt: now,
			TriggeredBy: TriggerSystemInit,
		},
	}
	return e
}

// State returns a copy of the current governance state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Reactions returns a copy of the bounded reaction ring buffer.
func (e *Engine) Reactions() []Reaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Reaction, len(e.reactions))
	copy(out, e.reactions)
	return out
}

// recordReaction builds exactly one audit envelope for a reaction and
// appends it to the bounded ring buffer (cap 50, oldest dropped).
// Caller must hold e.mu.
func (e *Engine) recordReaction(mode Mode, trigger Trigger, severity audit.Severity, reason string, event audit.Event, now int64) {
	env, err := audit.NewEnvelope(audit.NewEnvelopeParams{
		Event:    event,
		TraceID:  uuid.NewString(),
		Severity: severity,
		Context: map[string]interface{}{
			"mode":    string(mode),
			"trigger": string(trigger),
			"reason":  reason,
		},
		Timestamp: now,
	}, nil)
	if err != nil {
		// Only possible if event is not a taxonomy member, which would be
		// a programming error in this package, not a runtime condition.
		return
	}
	e.reactions = append(e.reactions, Reaction{Mode: mode, Trigger: trigger, Severity: severity, Reason: reason, At: now, Envelope: env})
	if len(e.reactions) > reactionRingCap {
		e.reactions = e.reactions[len(e.reactions)-reactionRingCap:]
	}
}

// escalate applies monotonic transition rules: strictly-lower-rank
// triggers are no-ops; same-or-higher rank triggers set mode, refresh
// reason/timestamp, and record exactly one reaction. Caller holds e.mu.
func (e *Engine) escalate(now int64, target Mode, trigger Trigger, severity audit.Severity, reason string, event audit.Event) {
	if rank(target) < rank(e.state.Mode) {
		return
	}
	e.state.Mode = target
	e.state.Reason = reason
	e.state.TriggeredAt = now
	e.state.TriggeredBy = trigger
	if target == ModeSoftLock {
		e.state.LockExpiresAt = now + e.cfg.SoftLockDurationMs
	}
	e.recordReaction(target, trigger, severity, reason, event, now)
}

// EvaluateIntegrity implements spec.md §4.4's integrity-failure trigger.
func (e *Engine) EvaluateIntegrity(input IntegrityInput) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	e.state.LastIntegrityCheck = &now

	failed := !input.HashValid || !input.KernelFrozen || len(input.ErrorCodes) > 0
	if failed {
		e.state.ViolationCounts.IntegrityFail++
		reason := fmt.Sprintf("Integrity failure: hashValid=%v kernelFrozen=%v errorCodes=%v", input.HashValid, input.KernelFrozen, input.ErrorCodes)
		e.escalate(now, ModeHardFreeze, TriggerIntegrityFailure, audit.SeverityCritical, reason, audit.Events["GovernanceFreeze"])
	}
	return e.state
}

// RecordPolicyDeny implements the policy-deny-burst trigger.
func (e *Engine) RecordPolicyDeny() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	e.state.ViolationCounts.PolicyDeny++
	e.policyWindow.record(now)
	count := e.policyWindow.count(now, e.cfg.PolicyBurstWindowMs)
	if count > e.cfg.PolicyBurstThreshold && rank(e.state.Mode) < rank(ModeHardFreeze) {
		reason := fmt.Sprintf("Policy violation burst: %d", count)
		e.escalate(now, ModeThrottled, TriggerPolicyBurst, severityHigh, reason, audit.Events["GovernanceThrottle"])
	}
	return e.state
}

// RecordNonceReplay implements the nonce-replay-flood trigger.
func (e *Engine) RecordNonceReplay() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	e.state.ViolationCounts.NonceReplay++
	e.nonceWindow.record(now)
	count := e.nonceWindow.count(now, e.cfg.NonceReplayWindowMs)
	if count > e.cfg.NonceReplayThreshold && rank(e.state.Mode) < rank(ModeHardFreeze) {
		reason := fmt.Sprintf("Nonce replay flood: %d", count)
		e.escalate(now, ModeSoftLock, TriggerNonceReplayFlood, audit.SeverityWarn, reason, audit.Events["GovernanceLock"])
	}
	return e.state
}

// CheckLedgerParity implements the ledger-mismatch trigger. Equality
// clears PromotionBlocked silently; inequality sets it and records a
// reaction without changing mode.
func (e *Engine) CheckLedgerParity(buildSha, ledgerSha string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	if buildSha == ledgerSha {
		e.state.PromotionBlocked = false
		return e.state
	}
	e.state.PromotionBlocked = true
	e.state.ViolationCounts.LedgerMismatch++
	reason := fmt.Sprintf("Ledger mismatch: build=%s ledger=%s", buildSha, ledgerSha)
	e.recordReaction(e.state.Mode, TriggerLedgerMismatch, audit.SeverityWarn, reason, audit.Events["GovernanceBlockPromotion"], now)
	return e.state
}

// IsExecutionAllowed auto-expires an elapsed SOFT_LOCK before deciding.
// HARD_FREEZE and an unexpired SOFT_LOCK deny execution.
func (e *Engine) IsExecutionAllowed() ExecutionGate {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()

	if e.state.Mode == ModeSoftLock && e.state.LockExpiresAt != 0 && now > e.state.LockExpiresAt {
		e.state.Mode = ModeNormal
		e.state.Reason = "soft lock expired"
		e.state.TriggeredAt = now
		e.state.TriggeredBy = TriggerNonceReplayFlood
		e.state.LockExpiresAt = 0 // cleared on expiry, not left stale; see DESIGN.md
		e.recordReaction(ModeNormal, TriggerNonceReplayFlood, audit.SeverityInfo, "soft lock expired", audit.Events["GovernanceUnlock"], now)
	}

	if e.state.Mode == ModeHardFreeze {
		return ExecutionGate{Allowed: false, Reason: e.state.Reason}
	}
	if e.state.Mode == ModeSoftLock && now <= e.state.LockExpiresAt {
		return ExecutionGate{Allowed: false, Reason: fmt.Sprintf("soft lock active until %d", e.state.LockExpiresAt)}
	}
	return ExecutionGate{Allowed: true}
}

// OwnerOverride sets mode unconditionally, regardless of monotonicity.
// Targeting NORMAL resets the policy-deny and nonce-replay counters and
// clears PromotionBlocked and LockExpiresAt. Always records a reaction.
func (e *Engine) OwnerOverride(target Mode) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()

	e.state.Mode = target
	e.state.Reason = fmt.Sprintf("owner override to %s", target)
	e.state.TriggeredAt = now
	e.state.TriggeredBy = TriggerOwnerOverride

	if target == ModeNormal {
		e.state.ViolationCounts.PolicyDeny = 0
		e.state.ViolationCounts.NonceReplay = 0
		e.state.PromotionBlocked = false
		e.state.LockExpiresAt = 0
		e.policyWindow.reset()
		e.nonceWindow.reset()
	}

	e.recordReaction(target, TriggerOwnerOverride, severityMedium, e.state.Reason, audit.Events["GovernanceOverride"], now)
	return e.state
}
