package vfs

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Entry is one child of a directory as seen by the duplicate scanner.
type Entry struct {
	Name  string
	IsDir bool
}

// ScanLister lists the entries of a directory for the duplicate
// scanner's recursive walk.
type ScanLister interface {
	ListEntries(ctx context.Context, dir Path) ([]Entry, error)
}

// DuplicateGroup is one set of siblings sharing a canonical key.
type DuplicateGroup struct {
	ParentPath   string   `json:"parentPath"`
	CanonicalKey string   `json:"canonicalKey"`
	Entries      []string `json:"entries"`
}

// ScanOptions parameterizes Scan.
type ScanOptions struct {
	MaxDepth       int  // 0 means unlimited
	ExcludeSystem  bool // default true: system:// is excluded unless explicitly false
}

// DefaultScanOptions returns spec.md's documented default: system://
// excluded, no depth limit.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{MaxDepth: 0, ExcludeSystem: true}
}

// Scan walks root in recursive pre-order, grouping each directory's
// children by canonical key and reporting every group of size > 1.
func Scan(ctx context.Context, lister ScanLister, root Path, opts ScanOptions) ([]DuplicateGroup, error) {
	if opts.ExcludeSystem && root.Scheme == SchemeSystem {
		return nil, nil
	}
	var groups []DuplicateGroup
	if err := scanDir(ctx, lister, root, opts, 0, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func scanDir(ctx context.Context, lister ScanLister, dir Path, opts ScanOptions, depth int, out *[]DuplicateGroup) error {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return nil
	}
	entries, err := lister.ListEntries(ctx, dir)
	if err != nil {
		return err
	}

	byKey := make(map[string][]string)
	var keys []string
	for _, e := range entries {
		key := canonicalKey(e.Name)
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], e.Name)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if len(byKey[key]) > 1 {
			names := append([]string(nil), byKey[key]...)
			sort.Strings(names)
			*out = append(*out, DuplicateGroup{ParentPath: dir.String(), CanonicalKey: key, Entries: names})
		}
	}

	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		child := Path{Scheme: dir.Scheme, Segments: append(append([]string(nil), dir.Segments...), e.Name)}
		if err := scanDir(ctx, lister, child, opts, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// FormatReport renders groups as a deterministic Markdown layout:
// one "### <parentPath>" heading per parent directory with at least
// one group, in path order, followed by one bullet per group in
// canonical-key order.
func FormatReport(groups []DuplicateGroup) string {
	if len(groups) == 0 {
		return "No duplicate names found.\n"
	}

	byParent := make(map[string][]DuplicateGroup)
	var parents []string
	for _, g := range groups {
		if _, ok := byParent[g.ParentPath]; !ok {
			parents = append(parents, g.ParentPath)
		}
		byParent[g.ParentPath] = append(byParent[g.ParentPath], g)
	}
	sort.Strings(parents)

	var b strings.Builder
	for _, parent := range parents {
		fmt.Fprintf(&b, "### %s\n", parent)
		gs := byParent[parent]
		sort.Slice(gs, func(i, j int) bool { return gs[i].CanonicalKey < gs[j].CanonicalKey })
		for _, g := range gs {
			fmt.Fprintf(&b, "- `%s`: %s\n", g.CanonicalKey, strings.Join(g.Entries, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
