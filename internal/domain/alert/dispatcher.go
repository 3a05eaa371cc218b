package alert

import "log/slog"

// Clock returns epoch milliseconds; overridden in tests for determinism.
type Clock func() int64

// Dispatcher owns per-environment dedup/escalation state and a closed
// set of best-effort sinks. State reads and writes are compare-and-set
// per environment key: the caller of Evaluate is expected to serialize
// calls for the same environment (the Alert Dispatcher resource row in
// spec.md §5 names the dispatcher as sole writer).
type Dispatcher struct {
	store  StateStore
	sinks  []Sink
	cfg    Config
	clock  Clock
	logger *slog.Logger
}

// NewDispatcher builds a Dispatcher. logger may be nil, in which case
// slog.Default() is used.
func NewDispatcher(store StateStore, sinks []Sink, cfg Config, clock Clock, logger *slog.Logger) *Dispatcher {
	if clock == nil {
		clock = func() int64 { return 0 }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, sinks: sinks, cfg: cfg.withDefaults(), clock: clock, logger: logger}
}

// Evaluate runs the decision procedure of spec.md §4.6 in order and, if
// it decides to send, delivers the resulting Notification to every
// configured sink (best-effort) and persists the updated State.
func (d *Dispatcher) Evaluate(in Input) (Result, error) {
	prior, found, err := d.store.Load(in.Environment)
	if err != nil {
		return Result{}, err
	}

	now := d.clock()
	fp := fingerprint(in.Status, in.ViolationCodes)
	vh := violationHash(in.ViolationCodes)

	result := d.decide(in, prior, found, fp, vh, now)

	if err := d.store.Save(in.Environment, result.NextState); err != nil {
		return Result{}, err
	}
	if result.Notification != nil {
		d.dispatch(*result.Notification)
	}
	return result, nil
}

// decide implements the pure decision procedure; it never touches the
// store or sinks so it stays table-testable in isolation.
func (d *Dispatcher) decide(in Input, prior State, found bool, fp, vh string, now int64) Result {
	send := func(reason Reason, next State) Result {
		next.LastFingerprint = fp
		next.LastSentAt = now
		next.LastStatus = in.Status
		next.LastViolationHash = vh
		return Result{
			Notification: &Notification{
				Environment:    in.Environment,
				Fingerprint:    fp,
				Status:         in.Status,
				ViolationCodes: in.ViolationCodes,
				Reason:         reason,
				SentAt:         now,
			},
			Reason:    reason,
			NextState: next,
		}
	}
	suppress := func(reason Reason, next State) Result {
		return Result{Reason: reason, NextState: next}
	}

	if !found {
		if in.Status == StatusHealthy {
			return suppress(ReasonInitialHealthy, State{LastStatus: in.Status, LastFingerprint: fp, LastViolationHash: vh})
		}
		return send(ReasonFirstAlert, State{})
	}

	if in.Status == StatusHealthy && prior.LastStatus != StatusHealthy {
		next := prior
		next.RecoverySentAt = now
		return send(ReasonRecovery, next)
	}

	if in.Status == StatusHealthy && prior.LastStatus == StatusHealthy {
		return suppress(ReasonStillHealthy, prior)
	}

	withinTTL := now-prior.LastSentAt < d.cfg.DedupTTLSeconds*1000
	if prior.LastFingerprint == fp && withinTTL {
		elapsed := now - prior.LastSentAt
		if d.cfg.Escalate2hEnabled && prior.Escalation2hSentAt == 0 && elapsed >= 2*60*60*1000 {
			next := prior
			next.Escalation2hSentAt = now
			return send(ReasonEscalation2h, next)
		}
		if d.cfg.Escalate30mEnabled && prior.Escalation30mSentAt == 0 && elapsed >= 30*60*1000 {
			next := prior
			next.Escalation30mSentAt = now
			return send(ReasonEscalation30m, next)
		}
		return suppress(ReasonDedupSuppressed, prior)
	}

	return send(ReasonNewOrExpired, State{})
}

// dispatch delivers n to every sink. A sink failure is logged and does
// not block the remaining sinks or alter the already-decided record.
func (d *Dispatcher) dispatch(n Notification) {
	for _, sink := range d.sinks {
		if err := sink.Send(n); err != nil {
			d.logger.Error("alert sink delivery failed", "sink", sink.Name(), "environment", n.Environment, "fingerprint", n.Fingerprint, "error", err)
		}
	}
}
