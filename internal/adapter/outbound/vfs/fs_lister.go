// Package vfs maps the domain VFS's three path schemes onto a real
// filesystem tree, one subdirectory per scheme, and implements the
// DirLister and ScanLister ports the domain needs for uniqueness
// checking and duplicate scanning.
package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	domainvfs "github.com/coreos-governance/core/internal/domain/vfs"
)

// FSLister implements both domainvfs.DirLister and domainvfs.ScanLister
// against a real directory tree rooted at RootDir, with one immediate
// child directory per scheme (system, user, workspace).
type FSLister struct {
	rootDir string
}

// NewFSLister creates a filesystem-backed lister rooted at rootDir,
// creating the per-scheme subdirectories if they don't already exist.
func NewFSLister(rootDir string) (*FSLister, error) {
	for _, scheme := range []domainvfs.Scheme{domainvfs.SchemeSystem, domainvfs.SchemeUser, domainvfs.SchemeWorkspace} {
		if err := os.MkdirAll(filepath.Join(rootDir, string(scheme)), 0700); err != nil {
			return nil, fmt.Errorf("create vfs scheme directory: %w", err)
		}
	}
	return &FSLister{rootDir: rootDir}, nil
}

func (l *FSLister) realPath(p domainvfs.Path) string {
	parts := append([]string{l.rootDir, string(p.Scheme)}, p.Segments...)
	return filepath.Join(parts...)
}

// ListChildren implements domainvfs.DirLister.
func (l *FSLister) ListChildren(_ context.Context, parent domainvfs.Path) ([]string, error) {
	entries, err := os.ReadDir(l.realPath(parent))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list vfs children: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ListEntries implements domainvfs.ScanLister.
func (l *FSLister) ListEntries(_ context.Context, dir domainvfs.Path) ([]domainvfs.Entry, error) {
	entries, err := os.ReadDir(l.realPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan vfs entries: %w", err)
	}
	out := make([]domainvfs.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domainvfs.Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}

// Compile-time interface verification.
var (
	_ domainvfs.DirLister  = (*FSLister)(nil)
	_ domainvfs.ScanLister = (*FSLister)(nil)
)
