package branches

import (
	"context"
	"errors"
	"testing"

	"clinic-platform/internal/store"
	"clinic-platform/internal/validation"
)

func TestService_CreateListUpdate(t *testing.T) {
	s := NewService(NewMemoryRepo())
	ctx := context.Background()

	nyc, err := s.Create(ctx, CreateInput{Code: "NYC", Name: "New York", Phone: "+12125550100"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, CreateInput{Code: "BOS", Name: "Boston"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	if _, err := s.Update(ctx, nyc.ID, UpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}

	public, total, _ := s.List(ctx, false, store.PageRequest{})
	if total != 1 || public[0].Code != "BOS" {
		t.Fatalf("anonymous listing must hide inactive branches: %+v", public)
	}
	all, total, _ := s.List(ctx, true, store.PageRequest{})
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected both branches, got %d", total)
	}

	tot, active, _ := s.Count(ctx)
	if tot != 2 || active != 1 {
		t.Fatalf("unexpected counts: total=%d active=%d", tot, active)
	}
}

func TestService_DuplicateCode(t *testing.T) {
	s := NewService(NewMemoryRepo())
	ctx := context.Background()
	if _, err := s.Create(ctx, CreateInput{Code: "NYC", Name: "New York"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.Create(ctx, CreateInput{Code: "NYC", Name: "Manhattan"})
	if ce, ok := store.Inspect(err); !ok || ce.Kind != store.KindUnique || ce.Field != "code" {
		t.Fatalf("expected unique violation on code, got %v", err)
	}
}

func TestService_RejectsLowercaseCode(t *testing.T) {
	_, err := NewService(NewMemoryRepo()).Create(context.Background(), CreateInput{Code: "nyc", Name: "New York"})
	var verr *validation.Error
	if !errors.As(err, &verr) || verr.Fields[0].Field != "code" {
		t.Fatalf("expected code validation error, got %v", err)
	}
}

func TestService_Exists(t *testing.T) {
	s := NewService(NewMemoryRepo())
	b, _ := s.Create(context.Background(), CreateInput{Code: "SEA", Name: "Seattle"})

	if ok, err := s.Exists(context.Background(), b.ID); !ok || err != nil {
		t.Fatalf("expected branch to exist, ok=%v err=%v", ok, err)
	}
	if ok, err := s.Exists(context.Background(), "missing"); ok || err != nil {
		t.Fatalf("expected missing branch, ok=%v err=%v", ok, err)
	}
}
