package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreos-governance/core/internal/apperror"
	"github.com/coreos-governance/core/internal/domain/audit"
)

// ErrChainBroken is returned by ValidateChain when hash linkage fails,
// and by Ledger methods that detect a broken head on append.
var ErrChainBroken = errors.New("ledger: chain integrity broken")

// Ledger is the append-only, hash-chained record store. One Ledger
// instance owns all chains; appends are serialized per chainId, never
// globally, so independent chains make progress concurrently.
type Ledger struct {
	store Store

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New constructs a Ledger backed by store.
func New(store Store) *Ledger {
	return &Ledger{store: store, locks: make(map[string]*sync.Mutex)}
}

func (l *Ledger) chainLock(chainID string) *sync.Mutex {
	l.locksMu.Lock()
	defer l.locksMu.Unlock()
	m, ok := l.locks[chainID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[chainID] = m
	}
	return m
}

// Append takes the next seq for chainID, snapshots prevHash from the
// current head (genesis = GenesisHash), canonicalizes payload, computes
// recordHash, and durably appends. At most one Append per chainID runs
// at a time. Append never partially succeeds: either the record is
// durably visible to subsequent calls, or an error is returned and the
// head is unchanged.
func (l *Ledger) Append(ctx context.Context, chainID string, payload audit.Envelope) (AuditRecord, error) {
	if chainID == "" {
		return AuditRecord{}, apperror.New(apperror.KindValidation, "ledger.chain_id_required", "chainId must not be empty")
	}
	mu := l.chainLock(chainID)
	mu.Lock()
	defer mu.Unlock()

	headSeq, headHash, exists, err := l.store.Head(ctx, chainID)
	if err != nil {
		return AuditRecord{}, apperror.Wrap(apperror.KindTransient, "ledger.head_read_failed", "could not read chain head", err)
	}

	var nextSeq uint64
	prevHash := GenesisHash
	if exists {
		nextSeq = headSeq + 1
		prevHash = headHash
	}

	canon, err := Canonical(payload)
	if err != nil {
		return AuditRecord{}, apperror.Wrap(apperror.KindValidation, "ledger.canonicalize_failed", "could not canonicalize payload", err)
	}

	recordedAt := time.Now().UnixMilli()
	recordHash, err := computeRecordHash(canon, prevHash, nextSeq, chainID, recordedAt)
	if err != nil {
		return AuditRecord{}, apperror.Wrap(apperror.KindIntegrity, "ledger.hash_failed", "could not compute record hash", err)
	}

	rec := AuditRecord{
		ChainID:    chainID,
		Seq:        nextSeq,
		PrevHash:   prevHash,
		Payload:    payload,
		RecordedAt: recordedAt,
		RecordHash: recordHash,
	}

	if err := l.store.Append(ctx, rec); err != nil {
		return AuditRecord{}, apperror.Wrap(apperror.KindTransient, "ledger.append_failed", "could not durably append record", err)
	}
	return rec, nil
}

// GetRecords returns a contiguous range read [fromSeq, fromSeq+count).
func (l *Ledger) GetRecords(ctx context.Context, chainID string, fromSeq uint64, count int) ([]AuditRecord, error) {
	return l.store.Range(ctx, chainID, fromSeq, count)
}

// ValidateChain recomputes recordHash for each record and verifies
// prevHash linkage against the preceding record. Pure: it never
// repairs or mutates the input. records must be ordered by seq
// ascending and belong to the same chain.
func ValidateChain(records []AuditRecord) ValidateResult {
	for i, r := range records {
		canon, err := Canonical(r.Payload)
		if err != nil {
			seq := r.Seq
			return ValidateResult{Valid: false, FirstBrokenSeq: &seq, Err: fmt.Errorf("record %d: canonicalize failed: %w", r.Seq, err)}
		}
		expected, err := computeRecordHash(canon, r.PrevHash, r.Seq, r.ChainID, r.RecordedAt)
		if err != nil {
			seq := r.Seq
			return ValidateResult{Valid: false, FirstBrokenSeq: &seq, Err: fmt.Errorf("%w: record %d hash recompute failed: %v", ErrChainBroken, r.Seq, err)}
		}
		if expected != r.RecordHash {
			seq := r.Seq
			return ValidateResult{Valid: false, FirstBrokenSeq: &seq, Err: fmt.Errorf("%w: record %d recordHash mismatch", ErrChainBroken, r.Seq)}
		}
		if i > 0 {
			prev := records[i-1]
			if r.Seq != prev.Seq+1 {
				seq := r.Seq
				return ValidateResult{Valid: false, FirstBrokenSeq: &seq, Err: fmt.Errorf("%w: record %d seq not contiguous after %d", ErrChainBroken, r.Seq, prev.Seq)}
			}
			if r.PrevHash != prev.RecordHash {
				seq := r.Seq
				return ValidateResult{Valid: false, FirstBrokenSeq: &seq, Err: fmt.Errorf("%w: record %d prevHash does not match record %d recordHash", ErrChainBroken, r.Seq, prev.Seq)}
			}
		}
	}
	return ValidateResult{Valid: true}
}
