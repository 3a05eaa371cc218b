package vfs

import "testing"

func TestNormalizeBasic(t *testing.T) {
	p, err := Normalize("workspace://a/b/c")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.Scheme != SchemeWorkspace || len(p.Segments) != 3 {
		t.Fatalf("got %+v", p)
	}
	if p.String() != "workspace://a/b/c" {
		t.Fatalf("String() = %q", p.String())
	}
}

func TestNormalizeBackslashFoldedToSlash(t *testing.T) {
	p, err := Normalize(`user://a\b\c`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(p.Segments) != 3 || p.Segments[1] != "b" {
		t.Fatalf("got %+v", p)
	}
}

func TestNormalizeCollapsesEmptySegments(t *testing.T) {
	p, err := Normalize("workspace://a//b///c/")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(p.Segments) != 3 {
		t.Fatalf("got %+v, want 3 segments", p)
	}
}

func TestNormalizeRejectsTraversal(t *testing.T) {
	for _, raw := range []string{"workspace://a/../b", "workspace://..", "workspace://a/."} {
		if _, err := Normalize(raw); err != ErrInvalidPath {
			t.Fatalf("Normalize(%q) err = %v, want ErrInvalidPath", raw, err)
		}
	}
}

func TestNormalizeRejectsUnknownScheme(t *testing.T) {
	if _, err := Normalize("evil://a/b"); err != ErrInvalidPath {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}
}

func TestNormalizeURLDecodesSegments(t *testing.T) {
	p, err := Normalize("workspace://a%20b/c")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.Segments[0] != "a b" {
		t.Fatalf("Segments[0] = %q, want %q", p.Segments[0], "a b")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	p1, err := Normalize("workspace://a/b")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	p2, err := Normalize(p1.String())
	if err != nil {
		t.Fatalf("Normalize (round 2): %v", err)
	}
	if p1.String() != p2.String() {
		t.Fatalf("not idempotent: %q != %q", p1.String(), p2.String())
	}
}

func TestNormalizeRejectsMalformedEncoding(t *testing.T) {
	if _, err := Normalize("workspace://a%zz"); err != ErrInvalidPath {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}
}

func TestNormalizeRejectsNullBytes(t *testing.T) {
	for _, raw := range []string{"workspace://a\x00b", "workspace://a%00b"} {
		if _, err := Normalize(raw); err != ErrInvalidPath {
			t.Fatalf("Normalize(%q) err = %v, want ErrInvalidPath", raw, err)
		}
	}
}
