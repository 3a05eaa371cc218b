package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreos-governance/core/internal/domain/audit"
	"github.com/coreos-governance/core/internal/domain/ledger"
)

// appendRequest is one queued async append.
type appendRequest struct {
	chainID  string
	envelope audit.Envelope
}

// LedgerService wraps the domain Ledger with an async, backpressured
// queue for callers that do not need the resulting AuditRecord
// in-line (governance reactions, VFS gate decisions): the hot path
// enqueues and returns immediately, and a single background worker
// drains the queue into Ledger.Append one envelope at a time, since
// hash-chain linkage is inherently sequential per chain and cannot be
// batched the way a plain store write could be. Callers that do need
// the resulting record (anything that must observe a durability error)
// call Append directly instead.
type LedgerService struct {
	ledger *ledger.Ledger
	logger *slog.Logger

	queue chan appendRequest
	done  chan struct{}
	wg    sync.WaitGroup

	sendTimeout time.Duration
	dropCount   atomic.Int64
}

// LedgerServiceOption configures LedgerService.
type LedgerServiceOption func(*LedgerService)

// WithQueueSize overrides the default async queue capacity.
func WithQueueSize(size int) LedgerServiceOption {
	return func(s *LedgerService) { s.queue = make(chan appendRequest, size) }
}

// WithLedgerSendTimeout overrides how long EnqueueAppend blocks before
// dropping an envelope under backpressure. 0 means drop immediately.
func WithLedgerSendTimeout(d time.Duration) LedgerServiceOption {
	return func(s *LedgerService) { s.sendTimeout = d }
}

// NewLedgerService builds a LedgerService around l.
func NewLedgerService(l *ledger.Ledger, logger *slog.Logger, opts ...LedgerServiceOption) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &LedgerService{
		ledger:      l,
		logger:      logger,
		queue:       make(chan appendRequest, 1000),
		done:        make(chan struct{}),
		sendTimeout: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background worker. Must be called once before
// EnqueueAppend is used.
func (s *LedgerService) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)
}

// Stop drains the queue and waits for the worker to finish.
func (s *LedgerService) Stop() {
	close(s.queue)
	s.wg.Wait()
}

// Append durably appends payload to chainID and returns the resulting
// record. Blocks until the ledger's per-chain lock is acquired and the
// store confirms durability.
func (s *LedgerService) Append(ctx context.Context, chainID string, payload audit.Envelope) (ledger.AuditRecord, error) {
	return s.ledger.Append(ctx, chainID, payload)
}

// EnqueueAppend queues payload for async, best-effort durable append.
// A full queue blocks up to sendTimeout before the envelope is dropped
// and counted; the drop never propagates to the caller.
func (s *LedgerService) EnqueueAppend(chainID string, payload audit.Envelope) {
	req := appendRequest{chainID: chainID, envelope: payload}
	select {
	case s.queue <- req:
		return
	default:
	}
	if s.sendTimeout <= 0 {
		s.recordDrop(req)
		return
	}
	select {
	case s.queue <- req:
	case <-time.After(s.sendTimeout):
		s.recordDrop(req)
	}
}

// DroppedRecords returns the count of envelopes dropped under
// backpressure (for metrics).
func (s *LedgerService) DroppedRecords() int64 {
	return s.dropCount.Load()
}

// QueueDepth returns the number of envelopes currently buffered in the
// async append queue, for health/metrics reporting.
func (s *LedgerService) QueueDepth() int {
	return len(s.queue)
}

// QueueCapacity returns the async append queue's configured capacity.
func (s *LedgerService) QueueCapacity() int {
	return cap(s.queue)
}

// GetRecords passes through to the domain Ledger's range read.
func (s *LedgerService) GetRecords(ctx context.Context, chainID string, fromSeq uint64, count int) ([]ledger.AuditRecord, error) {
	return s.ledger.GetRecords(ctx, chainID, fromSeq, count)
}

// ValidateChain passes through to the pure domain validator.
func (s *LedgerService) ValidateChain(records []ledger.AuditRecord) ledger.ValidateResult {
	return ledger.ValidateChain(records)
}

func (s *LedgerService) recordDrop(req appendRequest) {
	drops := s.dropCount.Add(1)
	s.logger.Warn("ledger async append dropped",
		"chain_id", req.chainID,
		"event", req.envelope.Event,
		"total_drops", drops,
	)
}

func (s *LedgerService) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case req, ok := <-s.queue:
			if !ok {
				return
			}
			s.appendOne(ctx, req)
		case <-ctx.Done():
			for req := range s.queue {
				s.appendOne(context.Background(), req)
			}
			return
		}
	}
}

func (s *LedgerService) appendOne(ctx context.Context, req appendRequest) {
	if _, err := s.ledger.Append(ctx, req.chainID, req.envelope); err != nil {
		s.logger.Error("async ledger append failed",
			"chain_id", req.chainID,
			"event", req.envelope.Event,
			"error", err,
		)
	}
}
