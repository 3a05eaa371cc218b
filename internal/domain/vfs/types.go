// Package vfs implements path normalization, the governance write gate,
// the kernel uniqueness invariant, a duplicate-name scanner, and a
// session-scoped conflict store for the virtual filesystem surface.
package vfs

import (
	"errors"
	"strings"
)

// Scheme is the closed set of VFS path roots.
type Scheme string

const (
	SchemeSystem    Scheme = "system"
	SchemeUser      Scheme = "user"
	SchemeWorkspace Scheme = "workspace"
)

func (s Scheme) valid() bool {
	switch s {
	case SchemeSystem, SchemeUser, SchemeWorkspace:
		return true
	default:
		return false
	}
}

// Path is a normalized VFS path: a scheme plus ordered, non-empty
// segments. Normalization is idempotent and total over valid input.
type Path struct {
	Scheme   Scheme
	Segments []string
}

// String renders Path back to scheme://a/b/c form. Characters that
// Normalize would decode or split on ('%', '/', '\', '+') are
// percent-encoded, so Normalize(p.String()) yields p again.
func (p Path) String() string {
	esc := strings.NewReplacer("%", "%25", "/", "%2F", "\\", "%5C", "+", "%2B")
	out := string(p.Scheme) + "://"
	for i, seg := range p.Segments {
		if i > 0 {
			out += "/"
		}
		out += esc.Replace(seg)
	}
	return out
}

// Parent returns the Path one level up, and whether one exists (a
// root path with zero or one segment has no parent).
func (p Path) Parent() (Path, bool) {
	if len(p.Segments) <= 1 {
		return Path{}, false
	}
	return Path{Scheme: p.Scheme, Segments: p.Segments[:len(p.Segments)-1]}, true
}

// Base returns the final path segment, or "" for a root path.
func (p Path) Base() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Operation is a VFS mutation kind; the write family is gated against
// scheme system by the governance gate.
type Operation string

const (
	OpRead   Operation = "read"
	OpWrite  Operation = "write"
	OpMkdir  Operation = "mkdir"
	OpDelete Operation = "delete"
	OpRename Operation = "rename"
	OpMove   Operation = "move"
)

func (o Operation) isWriteFamily() bool {
	switch o {
	case OpWrite, OpMkdir, OpDelete:
		return true
	default:
		return false
	}
}

// ErrInvalidPath is returned for scheme errors, traversal, and
// malformed encoding.
var ErrInvalidPath = errors.New("vfs: invalid path")

// ErrConflict is returned by the uniqueness invariant check.
var ErrConflict = errors.New("vfs: name conflicts with an existing sibling")

// ErrPermissionDenied is returned for write-family operations
// targeting scheme system.
var ErrPermissionDenied = errors.New("vfs: permission denied")

// ErrGovernanceBlock is returned when the VFS feature flag is off.
var ErrGovernanceBlock = errors.New("vfs: governance block")
