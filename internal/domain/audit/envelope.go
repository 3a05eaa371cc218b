package audit

import (
	"errors"
	"time"
)

// ActorType identifies the kind of principal that performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorWorker ActorType = "worker"
	ActorSystem ActorType = "system"
	ActorBrain  ActorType = "brain"
)

// Actor identifies who performed the event.
type Actor struct {
	Type ActorType `json:"type"`
	ID   string    `json:"id"`
}

// Severity is the envelope's importance level.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarn     Severity = "WARN"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Envelope is the canonical wrapper every subsystem emits. It is
// constructed once and never mutated afterward.
type Envelope struct {
	Version   string                 `json:"version"`
	Event     Event                  `json:"event"`
	TraceID   string                 `json:"traceId"`
	Timestamp int64                  `json:"timestamp"`
	Severity  Severity               `json:"severity"`
	Actor     *Actor                 `json:"actor,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// Sentinel errors for envelope construction failures.
var (
	// ErrMissingTrace is returned when traceId is empty.
	ErrMissingTrace = errors.New("audit: traceId is required")
	// ErrUnknownEvent is returned when event is not a registered taxonomy member.
	ErrUnknownEvent = errors.New("audit: event is not a registered taxonomy member")
)

// NewEnvelopeParams are the inputs to NewEnvelope.
type NewEnvelopeParams struct {
	Event     Event
	TraceID   string
	Severity  Severity
	Actor     *Actor
	Context   map[string]interface{}
	Timestamp int64 // optional; now() used if zero
}

// Clock is injected so tests can freeze time; defaults to time.Now.
type Clock func() time.Time

// NewEnvelope constructs an Envelope. It is a pure function with no
// side effects beyond reading the clock. Fails with ErrMissingTrace when
// traceId is empty, and ErrUnknownEvent when event is not a taxonomy
// member.
func NewEnvelope(p NewEnvelopeParams, now Clock) (Envelope, error) {
	if p.TraceID == "" {
		return Envelope{}, ErrMissingTrace
	}
	if !IsKnownEvent(p.Event) {
		return Envelope{}, ErrUnknownEvent
	}
	ts := p.Timestamp
	if ts == 0 {
		if now == nil {
			now = time.Now
		}
		ts = now().UnixMilli()
	}
	sev := p.Severity
	if sev == "" {
		sev = SeverityInfo
	}
	return Envelope{
		Version:   Version,
		Event:     p.Event,
		TraceID:   p.TraceID,
		Timestamp: ts,
		Severity:  sev,
		Actor:     p.Actor,
		Context:   p.Context,
	}, nil
}
