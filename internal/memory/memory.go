// Package memory keeps transactions, categories and exported sheet rows in
// process memory. It backs development runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"catatan/internal/core"
	"catatan/internal/ports"
)

type syncState struct {
	synced   bool
	attempts int
	rowRef   string
	lastErr  string
}

type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	txns  []core.Transaction
	state map[string]*syncState
	order map[string]int
}

// New creates a store holding cats. Duplicate ids keep the first entry.
func New(cats []core.Category) *Store {
	s := &Store{state: map[string]*syncState{}, order: map[string]int{}}
	seen := map[string]struct{}{}
	for _, c := range cats {
		if _, ok := seen[c.ID]; ok || strings.TrimSpace(c.ID) == "" {
			continue
		}
		seen[c.ID] = struct{}{}
		s.cats = append(s.cats, c)
	}
	return s
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state[t.ID]; ok {
		return fmt.Errorf("transaction %s already exists", t.ID)
	}
	s.order[t.ID] = len(s.txns)
	s.txns = append(s.txns, t)
	s.state[t.ID] = &syncState{}
	return nil
}

// ListTransactions returns a copy, newest date first.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.txns...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.order[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	return s.txns[i], nil
}

func (s *Store) PendingSync(_ context.Context, limit, maxAttempts int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txns {
		if len(out) >= limit {
			break
		}
		st := s.state[t.ID]
		if st.synced || st.attempts >= maxAttempts {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id, rowRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[id]
	if !ok {
		return fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	st.synced, st.rowRef, st.lastErr = true, rowRef, ""
	return nil
}

func (s *Store) MarkSyncError(_ context.Context, id string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state[id]
	if !ok {
		return fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	st.attempts++
	if cause != nil {
		st.lastErr = cause.Error()
	}
	return nil
}

// ListCategories returns categories of flow (all for an empty flow) by label.
func (s *Store) ListCategories(_ context.Context, flow core.Flow) ([]core.Category, error) {
	s.mu.Lock()
	var out []core.Category
	for _, c := range s.cats {
		if flow == "" || c.Flow == flow {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Label) < strings.ToLower(out[j].Label)
	})
	return out, nil
}

func (s *Store) UpsertCategory(_ context.Context, c core.Category) error {
	if strings.TrimSpace(c.ID) == "" {
		return core.ErrEmptyCategory
	}
	if !c.Flow.Valid() {
		return core.ErrInvalidFlow
	}
	if c.Label == "" {
		c.Label = c.ID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cats {
		if s.cats[i].ID == c.ID {
			s.cats[i] = c
			return nil
		}
	}
	s.cats = append(s.cats, c)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Row is one exported sheet row.
type Row struct {
	Transaction core.Transaction
	Category    string
	ExportedAt  time.Time
}

// Sheet is an in-memory stand-in for the Google Sheets exporter.
type Sheet struct {
	mu   sync.Mutex
	rows []Row
}

func NewSheet() *Sheet { return &Sheet{} }

// AppendTransaction implements ports.TransactionExporter
func (s *Sheet) AppendTransaction(_ context.Context, t core.Transaction, categoryLabel string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{Transaction: t, Category: categoryLabel, ExportedAt: time.Now()})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Sheet) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}
