package vfs

import (
	"context"

	"github.com/cespare/xxhash/v2"
)

// DirLister lists the existing children of a directory path. Adapters
// back this with the real filesystem or workspace store; it is the
// only I/O boundary this package reaches across.
type DirLister interface {
	ListChildren(ctx context.Context, parent Path) ([]string, error)
}

// CheckUniqueness implements the kernel uniqueness invariant: for
// write, mkdir, rename(newName) and move(dst), baseName is compared
// case-insensitively (and canonical-key-folded) against every existing
// sibling in parent. A collision returns ErrConflict. This is an
// invariant, not advice: callers must not bypass it for any of the
// four operations it covers.
func CheckUniqueness(ctx context.Context, lister DirLister, parent Path, baseName string) error {
	children, err := lister.ListChildren(ctx, parent)
	if err != nil {
		return err
	}
	target := xxhash.Sum64String(canonicalKey(baseName))
	for _, child := range children {
		if xxhash.Sum64String(canonicalKey(child)) == target {
			return ErrConflict
		}
	}
	return nil
}
