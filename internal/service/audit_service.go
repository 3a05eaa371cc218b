// Package service contains application services that wire the pure
// domain packages to outbound ports and expose the operations the
// inbound adapters call.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/coreos-governance/core/internal/domain/audit"
)

// AuditService builds audit.Envelope values with a shared clock and a
// fresh trace ID per call, so every other service constructs envelopes
// the same way instead of repeating audit.NewEnvelope's ceremony.
type AuditService struct {
	clock audit.Clock
}

// NewAuditService builds an AuditService. clock may be nil, in which
// case time.Now is used.
func NewAuditService(clock audit.Clock) *AuditService {
	if clock == nil {
		clock = time.Now
	}
	return &AuditService{clock: clock}
}

// NewEnvelope builds an Envelope for event, generating a trace ID when
// traceID is empty.
func (s *AuditService) NewEnvelope(event audit.Event, traceID string, severity audit.Severity, actor *audit.Actor, context map[string]interface{}) (audit.Envelope, error) {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return audit.NewEnvelope(audit.NewEnvelopeParams{
		Event:    event,
		TraceID:  traceID,
		Severity: severity,
		Actor:    actor,
		Context:  context,
	}, s.clock)
}
