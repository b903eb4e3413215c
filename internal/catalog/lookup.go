package catalog

import (
	"context"
	"log/slog"

	"catatan/internal/core"
	"catatan/internal/ports"
)

// Lookup is a read-only id -> category table.
type Lookup map[string]core.Category

func NewLookup(cats []core.Category) Lookup {
	l := make(Lookup, len(cats))
	for _, c := range cats {
		l[c.ID] = c
	}
	return l
}

// Category implements report.CategoryLookup
func (l Lookup) Category(id string) (core.Category, bool) {
	c, ok := l[id]
	return c, ok
}

// Source tells which tier served a category list.
type Source string

const (
	SourceStore Source = "store"
	SourceSeed  Source = "seed"
)

// Seeds provides the fallback category list.
type Seeds interface {
	Categories() []core.Category
}

// Static serves a fixed seed list.
type Static []core.Category

func (s Static) Categories() []core.Category {
	return append([]core.Category(nil), s...)
}

// TwoTier reads categories from the store and falls back to the seed list
// when the store fails or holds no rows for the requested flow.
type TwoTier struct {
	store ports.CategoryReader
	seeds Seeds
}

func NewTwoTier(store ports.CategoryReader, seeds Seeds) *TwoTier {
	if seeds == nil {
		seeds = Static(Defaults())
	}
	return &TwoTier{store: store, seeds: seeds}
}

// List never fails: store errors are logged and answered from the seeds.
func (t *TwoTier) List(ctx context.Context, flow core.Flow) ([]core.Category, Source) {
	if t.store != nil {
		cats, err := t.store.ListCategories(ctx, flow)
		switch {
		case err != nil:
			slog.ErrorContext(ctx, "Failed to load categories from store, falling back to seed list",
				"error", err, "flow", string(flow))
		case len(cats) > 0:
			return cats, SourceStore
		}
	}
	return Filter(t.seeds.Categories(), flow), SourceSeed
}
