package service

import (
	"context"

	"github.com/coreos-governance/core/internal/apperror"
	"github.com/coreos-governance/core/internal/domain/vfs"
)

// VFSChainID is the fixed ledger chain every VFS gate decision is
// appended to.
const VFSChainID = "vfs"

// VFSService wraps the pure VFS gate, uniqueness check and duplicate
// scanner, durably recording every gate decision, and owns the
// session-scoped conflict store.
type VFSService struct {
	ledger         *LedgerService
	dirLister      vfs.DirLister
	scanLister     vfs.ScanLister
	conflicts      *vfs.ConflictStore
	featureEnabled bool
	localhostOverride bool
	scanOptions    vfs.ScanOptions
}

// NewVFSService builds a VFSService. clock supplies epoch-millisecond
// timestamps for conflict-record CreatedAt/ResolvedAt.
func NewVFSService(l *LedgerService, dirLister vfs.DirLister, scanLister vfs.ScanLister, featureEnabled, localhostOverride bool, scanOptions vfs.ScanOptions, clock func() int64) *VFSService {
	return &VFSService{
		ledger:            l,
		dirLister:         dirLister,
		scanLister:        scanLister,
		conflicts:         vfs.NewConflictStore(clock),
		featureEnabled:    featureEnabled,
		localhostOverride: localhostOverride,
		scanOptions:       scanOptions,
	}
}

// CheckWrite runs op against path through the governance gate and, for
// write, mkdir, rename and move, the uniqueness invariant, durably recording
// the gate's envelope either way.
func (s *VFSService) CheckWrite(ctx context.Context, op vfs.Operation, path vfs.Path, traceID string) error {
	decision := vfs.Gate(vfs.GateInput{
		FeatureEnabled:    s.featureEnabled,
		LocalhostOverride: s.localhostOverride,
		Operation:         op,
		Path:              path,
		TraceID:           traceID,
	})
	s.ledger.EnqueueAppend(VFSChainID, decision.Envelope)
	if !decision.Allowed {
		return decision.Denied
	}

	if needsUniquenessCheck(op) {
		parent, ok := path.Parent()
		if !ok {
			return apperror.New(apperror.KindValidation, "vfs.no_parent", "path has no parent to check uniqueness against")
		}
		if err := vfs.CheckUniqueness(ctx, s.dirLister, parent, path.Base()); err != nil {
			return err
		}
	}
	return nil
}

// needsUniquenessCheck reports whether op is one of the four
// operations the kernel uniqueness invariant covers: write, mkdir,
// rename and move. This is a different set than the gate's
// write-family (write/mkdir/delete), which governs the system-scheme
// block instead.
func needsUniquenessCheck(op vfs.Operation) bool {
	switch op {
	case vfs.OpWrite, vfs.OpMkdir, vfs.OpRename, vfs.OpMove:
		return true
	default:
		return false
	}
}

// Scan walks root for duplicate-name groups and records any newly
// found groups in the conflict store.
func (s *VFSService) Scan(ctx context.Context, root vfs.Path) ([]vfs.ConflictRecord, error) {
	groups, err := vfs.Scan(ctx, s.scanLister, root, s.scanOptions)
	if err != nil {
		return nil, err
	}
	return s.conflicts.AddFromScan(groups), nil
}

// Conflicts returns every recorded conflict.
func (s *VFSService) Conflicts() []vfs.ConflictRecord {
	return s.conflicts.Records()
}

// ResolveConflict transitions a conflict to RESOLVED, recording
// resolution as the free-text description of how it was resolved.
func (s *VFSService) ResolveConflict(id, resolution string) bool {
	return s.conflicts.Resolve(id, resolution)
}

// IgnoreConflict transitions a conflict to IGNORED.
func (s *VFSService) IgnoreConflict(id, resolution string) bool {
	return s.conflicts.Ignore(id, resolution)
}

// ReplaySyncConflict ingests one SYNC_CONFLICT conflict record
// recovered from an offline sync log, deduped the same way as a scan
// finding.
func (s *VFSService) ReplaySyncConflict(parentPath, canonicalKey string, entries []string) (vfs.ConflictRecord, bool) {
	return s.conflicts.AddSyncReplay(parentPath, canonicalKey, entries)
}

// ReportManualConflict files an operator-reported conflict directly,
// bypassing the scanner and sync-replay log.
func (s *VFSService) ReportManualConflict(conflictType vfs.ConflictType, parentPath, canonicalKey string, entries []string) (vfs.ConflictRecord, bool) {
	return s.conflicts.AddManual(conflictType, parentPath, canonicalKey, entries)
}

// SubscribeConflicts registers sub for conflict-store change notifications.
func (s *VFSService) SubscribeConflicts(sub vfs.Subscriber) {
	s.conflicts.Subscribe(sub)
}
