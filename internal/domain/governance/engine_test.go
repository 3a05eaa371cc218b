package governance

import (
	"strings"
	"testing"
)

func testClock(start int64) (func() int64, func(delta int64)) {
	now := start
	clock := func() int64 { return now }
	advance := func(delta int64) { now += delta }
	return clock, advance
}

// TestPolicyBurstEscalation is scenario S3 from spec.md §8.
func TestPolicyBurstEscalation(t *testing.T) {
	clock, _ := testClock(1_000_000)
	e := NewEngine(Config{PolicyBurstThreshold: 5, PolicyBurstWindowMs: 60000}, clock)

	var state State
	for i := 0; i < 6; i++ {
		state = e.RecordPolicyDeny()
	}
	if state.Mode != ModeThrottled {
		t.Fatalf("Mode = %q, want THROTTLED", state.Mode)
	}
	if !strings.Contains(state.Reason, "Policy violation burst: 6") {
		t.Fatalf("Reason = %q, want to contain 'Policy violation burst: 6'", state.Reason)
	}
}

// TestNonceFloodAndExpiry is scenario S4 from spec.md §8.
func TestNonceFloodAndExpiry(t *testing.T) {
	clock, advance := testClock(1_000_000)
	e := NewEngine(Config{NonceReplayThreshold: 3, SoftLockDurationMs: 1000}, clock)

	var state State
	for i := 0; i < 4; i++ {
		state = e.RecordNonceReplay()
	}
	if state.Mode != ModeSoftLock {
		t.Fatalf("Mode = %q, want SOFT_LOCK", state.Mode)
	}
	wantExpiry := int64(1_000_000) + 1000
	if state.LockExpiresAt != wantExpiry {
		t.Fatalf("LockExpiresAt = %d, want %d", state.LockExpiresAt, wantExpiry)
	}

	advance(1100)
	gate := e.IsExecutionAllowed()
	if !gate.Allowed {
		t.Fatalf("expected execution allowed after soft lock expiry, reason=%q", gate.Reason)
	}
	if e.State().Mode != ModeNormal {
		t.Fatalf("Mode = %q, want NORMAL after expiry", e.State().Mode)
	}
	if e.State().LockExpiresAt != 0 {
		t.Fatalf("LockExpiresAt = %d, want 0 after expiry", e.State().LockExpiresAt)
	}
}

// TestIntegrityFailureHardFreezeAndOverride is scenario S5.
func TestIntegrityFailureHardFreezeAndOverride(t *testing.T) {
	clock, _ := testClock(1_000_000)
	e := NewEngine(DefaultConfig(), clock)

	state := e.EvaluateIntegrity(IntegrityInput{HashValid: false, KernelFrozen: true})
	if state.Mode != ModeHardFreeze {
		t.Fatalf("Mode = %q, want HARD_FREEZE", state.Mode)
	}

	gate := e.IsExecutionAllowed()
	if gate.Allowed {
		t.Fatalf("expected execution denied under HARD_FREEZE")
	}

	restored := e.OwnerOverride(ModeNormal)
	if restored.Mode != ModeNormal {
		t.Fatalf("Mode after override = %q, want NORMAL", restored.Mode)
	}
	if restored.ViolationCounts.PolicyDeny != 0 || restored.ViolationCounts.NonceReplay != 0 {
		t.Fatalf("violation counters not zeroed after override: %+v", restored.ViolationCounts)
	}
	gate2 := e.IsExecutionAllowed()
	if !gate2.Allowed {
		t.Fatalf("expected execution allowed after override restored NORMAL")
	}
}

func TestMonotonicityStrictlyLowerRankIsNoOp(t *testing.T) {
	clock, _ := testClock(1_000_000)
	e := NewEngine(DefaultConfig(), clock)

	// Escalate straight to HARD_FREEZE.
	e.EvaluateIntegrity(IntegrityInput{HashValid: false, KernelFrozen: true})
	if e.State().Mode != ModeHardFreeze {
		t.Fatalf("expected HARD_FREEZE")
	}

	// A lower-rank trigger (policy burst -> THROTTLED) must not reduce mode.
	for i := 0; i < 10; i++ {
		e.RecordPolicyDeny()
	}
	if e.State().Mode != ModeHardFreeze {
		t.Fatalf("Mode = %q, want HARD_FREEZE unchanged", e.State().Mode)
	}
}

func TestReactionRingBufferBounded(t *testing.T) {
	clock, advance := testClock(1_000_000)
	e := NewEngine(Config{}, clock)

	for i := 0; i < 60; i++ {
		e.OwnerOverride(ModeThrottled)
		advance(1)
	}
	reactions := e.Reactions()
	if len(reactions) != reactionRingCap {
		t.Fatalf("len(Reactions()) = %d, want %d", len(reactions), reactionRingCap)
	}
}

func TestCheckLedgerParity(t *testing.T) {
	clock, _ := testClock(1_000_000)
	e := NewEngine(DefaultConfig(), clock)

	e.CheckLedgerParity("abc", "def")
	if !e.State().PromotionBlocked {
		t.Fatalf("expected PromotionBlocked=true after mismatch")
	}
	if e.State().Mode != ModeNormal {
		t.Fatalf("ledger mismatch must not change mode, got %q", e.State().Mode)
	}

	e.CheckLedgerParity("abc", "abc")
	if e.State().PromotionBlocked {
		t.Fatalf("expected PromotionBlocked=false after match")
	}
}
