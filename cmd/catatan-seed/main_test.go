package main

import (
	"context"
	"errors"
	"testing"

	"catatan/internal/catalog"
	"catatan/internal/core"
	"catatan/internal/memory"
)

type failingWriter struct{ after int }

func (f *failingWriter) UpsertCategory(ctx context.Context, c core.Category) error {
	if f.after == 0 {
		return errors.New("disk full")
	}
	f.after--
	return nil
}

func TestSeedWritesAllCategories(t *testing.T) {
	store := memory.New(nil)
	n, err := seed(context.Background(), store, catalog.Defaults())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(catalog.Defaults()) {
		t.Fatalf("wrote %d, want %d", n, len(catalog.Defaults()))
	}
	income, _ := store.ListCategories(context.Background(), core.FlowIncome)
	if len(income) == 0 {
		t.Fatalf("expected income categories after seeding")
	}
}

func TestSeedStopsOnError(t *testing.T) {
	n, err := seed(context.Background(), &failingWriter{after: 2}, catalog.Defaults())
	if err == nil {
		t.Fatalf("expected error")
	}
	if n != 2 {
		t.Fatalf("expected 2 written before failure, got %d", n)
	}
}
