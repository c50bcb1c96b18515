package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"uplink/internal/domain"
)

func TestFlagSetGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC()
	if err := s.SetFlag(ctx, FlagForeground, "true"); err != nil {
		t.Fatalf("SetFlag() failed: %v", err)
	}

	flag, err := s.GetFlag(ctx, FlagForeground)
	if err != nil {
		t.Fatalf("GetFlag() failed: %v", err)
	}
	if flag.Name != FlagForeground || flag.Value != "true" {
		t.Errorf("flag = %+v", flag)
	}
	if flag.UpdatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("updated_at %v predates the write", flag.UpdatedAt)
	}
}

func TestFlagUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetFlag(ctx, FlagForeground, "true"); err != nil {
		t.Fatalf("SetFlag() failed: %v", err)
	}
	if err := s.SetFlag(ctx, FlagForeground, "false"); err != nil {
		t.Fatalf("second SetFlag() failed: %v", err)
	}

	flag, err := s.GetFlag(ctx, FlagForeground)
	if err != nil {
		t.Fatalf("GetFlag() failed: %v", err)
	}
	if flag.Value != "false" {
		t.Fatalf("value = %q after upsert, want false", flag.Value)
	}
}

func TestFlagMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetFlag(context.Background(), "never-set")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetFlag() error = %v, want ErrNotFound", err)
	}
}
