package vfs

import (
	"context"
	"strings"
	"testing"
)

type treeLister struct {
	entries map[string][]Entry // key: dir.String()
}

func (t treeLister) ListEntries(_ context.Context, dir Path) ([]Entry, error) {
	return t.entries[dir.String()], nil
}

func TestScanFindsDuplicateGroup(t *testing.T) {
	tree := treeLister{entries: map[string][]Entry{
		"workspace://root": {
			{Name: "Notes.txt"},
			{Name: "notes.txt"},
			{Name: "unique.txt"},
		},
	}}
	groups, err := Scan(context.Background(), tree, mustPath(t, "workspace://root"), DefaultScanOptions())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(groups), groups)
	}
	if len(groups[0].Entries) != 2 {
		t.Fatalf("got %d entries in group, want 2", len(groups[0].Entries))
	}
}

func TestScanRecursesIntoSubdirectories(t *testing.T) {
	tree := treeLister{entries: map[string][]Entry{
		"workspace://root": {
			{Name: "sub", IsDir: true},
		},
		"workspace://root/sub": {
			{Name: "a.txt"},
			{Name: "A.txt"},
		},
	}}
	groups, err := Scan(context.Background(), tree, mustPath(t, "workspace://root"), DefaultScanOptions())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(groups) != 1 || groups[0].ParentPath != "workspace://root/sub" {
		t.Fatalf("got %+v", groups)
	}
}

func TestScanExcludesSystemByDefault(t *testing.T) {
	tree := treeLister{entries: map[string][]Entry{
		"system://root": {{Name: "a"}, {Name: "A"}},
	}}
	groups, err := Scan(context.Background(), tree, mustPath(t, "system://root"), DefaultScanOptions())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if groups != nil {
		t.Fatalf("expected no groups for excluded system scheme, got %+v", groups)
	}
}

func TestScanRespectsMaxDepth(t *testing.T) {
	tree := treeLister{entries: map[string][]Entry{
		"workspace://root":              {{Name: "sub", IsDir: true}},
		"workspace://root/sub":          {{Name: "deeper", IsDir: true}},
		"workspace://root/sub/deeper":   {{Name: "a"}, {Name: "A"}},
	}}
	groups, err := Scan(context.Background(), tree, mustPath(t, "workspace://root"), ScanOptions{MaxDepth: 0, ExcludeSystem: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected to find the group with unlimited depth, got %+v", groups)
	}

	groupsLimited, err := Scan(context.Background(), tree, mustPath(t, "workspace://root"), ScanOptions{MaxDepth: 1, ExcludeSystem: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(groupsLimited) != 0 {
		t.Fatalf("expected no groups within depth 1 (the duplicate group lives two levels down), got %+v", groupsLimited)
	}
}

func TestFormatReportDeterministic(t *testing.T) {
	groups := []DuplicateGroup{
		{ParentPath: "workspace://root", CanonicalKey: "notes.txt", Entries: []string{"Notes.txt", "notes.txt"}},
	}
	report := FormatReport(groups)
	if !strings.Contains(report, "workspace://root") || !strings.Contains(report, "notes.txt") {
		t.Fatalf("report missing expected content: %q", report)
	}
}

func TestFormatReportEmpty(t *testing.T) {
	report := FormatReport(nil)
	if report == "" {
		t.Fatalf("expected non-empty message for no duplicates")
	}
}
