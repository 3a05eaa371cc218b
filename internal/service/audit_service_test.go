package service

import (
	"testing"
	"time"

	"github.com/coreos-governance/core/internal/domain/audit"
)

func fixedAuditClock(t time.Time) audit.Clock {
	return func() time.Time { return t }
}

func TestAuditServiceNewEnvelopeGeneratesTraceID(t *testing.T) {
	s := NewAuditService(fixedAuditClock(time.Unix(1000, 0)))

	env, err := s.NewEnvelope(audit.Events["AuthLogin"], "", audit.SeverityInfo, nil, nil)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if env.TraceID == "" {
		t.Fatal("expected a generated trace ID, got empty string")
	}
	if env.Event != audit.Events["AuthLogin"] {
		t.Fatalf("Event = %q, want %q", env.Event, audit.Events["AuthLogin"])
	}
}

func TestAuditServiceNewEnvelopePreservesGivenTraceID(t *testing.T) {
	s := NewAuditService(fixedAuditClock(time.Unix(1000, 0)))

	env, err := s.NewEnvelope(audit.Events["AuthLogin"], "trace-123", audit.SeverityInfo, nil, nil)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if env.TraceID != "trace-123" {
		t.Fatalf("TraceID = %q, want %q", env.TraceID, "trace-123")
	}
}

func TestAuditServiceNewEnvelopeRejectsUnknownEvent(t *testing.T) {
	s := NewAuditService(nil)

	_, err := s.NewEnvelope(audit.Event("no.such.event"), "trace-1", audit.SeverityInfo, nil, nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered event")
	}
}
