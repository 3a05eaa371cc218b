package vfs

import (
	"context"
	"testing"
)

type staticLister struct {
	children []string
}

func (s staticLister) ListChildren(_ context.Context, _ Path) ([]string, error) {
	return s.children, nil
}

func TestCheckUniquenessCaseInsensitiveCollision(t *testing.T) {
	lister := staticLister{children: []string{"Report.txt", "notes.md"}}
	err := CheckUniqueness(context.Background(), lister, mustPath(t, "workspace://docs"), "report.txt")
	if err != ErrConflict {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCheckUniquenessNoCollision(t *testing.T) {
	lister := staticLister{children: []string{"report.txt"}}
	err := CheckUniqueness(context.Background(), lister, mustPath(t, "workspace://docs"), "other.txt")
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}
