package audit

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestNewEnvelopeRequiresTrace(t *testing.T) {
	_, err := NewEnvelope(NewEnvelopeParams{
		Event:    Events["SystemStartup"],
		Severity: SeverityInfo,
	}, nil)
	if !errors.Is(err, ErrMissingTrace) {
		t.Fatalf("err = %v, want ErrMissingTrace", err)
	}
}

func TestNewEnvelopeRejectsUnknownEvent(t *testing.T) {
	_, err := NewEnvelope(NewEnvelopeParams{
		Event:   "not.a.real.event",
		TraceID: "t1",
	}, nil)
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err = %v, want ErrUnknownEvent", err)
	}
}

func TestNewEnvelopeDefaultsSeverityAndVersion(t *testing.T) {
	env, err := NewEnvelope(NewEnvelopeParams{
		Event:   Events["SystemStartup"],
		TraceID: "t1",
	}, fixedClock(time.UnixMilli(1700000000000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Severity != SeverityInfo {
		t.Fatalf("Severity = %q, want INFO", env.Severity)
	}
	if env.Version != Version {
		t.Fatalf("Version = %q, want %q", env.Version, Version)
	}
	if env.Timestamp != 1700000000000 {
		t.Fatalf("Timestamp = %d, want 1700000000000", env.Timestamp)
	}
}

func TestNewEnvelopeExplicitTimestampOverridesClock(t *testing.T) {
	env, err := NewEnvelope(NewEnvelopeParams{
		Event:     Events["SystemStartup"],
		TraceID:   "t1",
		Timestamp: 42,
	}, fixedClock(time.UnixMilli(999)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Timestamp != 42 {
		t.Fatalf("Timestamp = %d, want 42", env.Timestamp)
	}
}
