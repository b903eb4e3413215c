// Package finance serves the ledger views of the app: transaction listing
// with a static fallback, the daily ledger, summary figures and creation.
package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"catatan/internal/catalog"
	"catatan/internal/core"
	"catatan/internal/ports"
)

type (
	// Store persists and lists transactions.
	Store interface {
		ports.TransactionLister
		ports.TransactionWriter
	}

	// Categories lists categories with the tier that served them.
	Categories interface {
		List(ctx context.Context, flow core.Flow) ([]core.Category, catalog.Source)
	}

	// Publisher announces a created transaction to the sync worker.
	Publisher interface {
		PublishTransactionSync(ctx context.Context, id string) error
	}
)

// Service orchestrates reads and writes across the store, the category
// catalog and the sync publisher.
type Service struct {
	store      Store
	categories Categories
	publisher  Publisher
	now        func() time.Time
	newID      func() string
	loc        *time.Location
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithLocation sets the zone in which "now" is read for defaults and
// period resolution.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(store Store, categories Categories, opts ...Option) *Service {
	s := &Service{
		store:      store,
		categories: categories,
		now:        time.Now,
		newID:      uuid.NewString,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.categories == nil {
		s.categories = catalog.NewTwoTier(nil, nil)
	}
	return s
}

// Now returns the current time in the service location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// ListTransactions never fails: a store error or an empty store is
// answered with the fallback set.
func (s *Service) ListTransactions(ctx context.Context) []core.Transaction {
	if s.store == nil {
		return FallbackTransactions()
	}
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load transactions, falling back to sample data", "error", err)
		return FallbackTransactions()
	}
	if len(txns) == 0 {
		return FallbackTransactions()
	}
	return txns
}

func (s *Service) ListCategories(ctx context.Context, flow core.Flow) []core.Category {
	cats, src := s.categories.List(ctx, flow)
	slog.DebugContext(ctx, "Categories loaded", "source", string(src), "flow", string(flow), "count", len(cats))
	return cats
}

// Lookup indexes cats over the fallback categories so the sample
// transactions always resolve.
func Lookup(cats []core.Category) catalog.Lookup {
	return catalog.NewLookup(append(FallbackCategories(), cats...))
}

// DailyRecords returns the ledger grouped per civil day, newest first.
func (s *Service) DailyRecords(ctx context.Context) []core.DailyRecord {
	return BuildDailyRecords(s.ListTransactions(ctx))
}

// Snapshot is everything a report or chart needs in one read.
type Snapshot struct {
	Transactions []core.Transaction
	Categories   []core.Category
	Lookup       catalog.Lookup
}

// Snapshot loads transactions and categories concurrently.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Transactions = s.ListTransactions(gctx)
		return nil
	})
	g.Go(func() error {
		snap.Categories = s.ListCategories(gctx, "")
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	snap.Lookup = Lookup(snap.Categories)
	return snap, nil
}

// Overview is the /api/finance payload.
type Overview struct {
	Categories   []core.Category    `json:"categories"`
	DailyRecords []core.DailyRecord `json:"dailyRecords"`
	SummaryItems []core.SummaryItem `json:"summaryItems"`
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Overview{}, err
	}
	records := BuildDailyRecords(snap.Transactions)
	return Overview{
		Categories:   snap.Categories,
		DailyRecords: records,
		SummaryItems: SummaryItems(records),
	}, nil
}

// BuildDailyRecords groups txns by civil date. Days are newest first and so
// are the items of each day. txns is not modified.
func BuildDailyRecords(txns []core.Transaction) []core.DailyRecord {
	groups := map[string][]core.Transaction{}
	days := map[string]core.Date{}
	for _, t := range txns {
		d := t.Day()
		key := d.Key()
		groups[key] = append(groups[key], t)
		days[key] = d
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	records := make([]core.DailyRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, buildDailyRecord(days[k], groups[k]))
	}
	return records
}

func buildDailyRecord(d core.Date, items []core.Transaction) core.DailyRecord {
	var expense, income int64
	for _, t := range items {
		switch t.Flow {
		case core.FlowExpense:
			expense += t.Amount.Units
		case core.FlowIncome:
			income += t.Amount.Units
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
	return core.DailyRecord{
		ID:        d.Key(),
		DateLabel: d.ShortLabel(),
		Day:       core.DayName(d.Weekday()),
		Totals: core.DailyTotals{
			Expense: core.FormatAmount(expense),
			Income:  core.FormatAmount(income),
		},
		Items: items,
	}
}

// SummaryItems totals the records into Pengeluaran, Pemasukan and Saldo.
func SummaryItems(records []core.DailyRecord) []core.SummaryItem {
	var expense, income int64
	for _, r := range records {
		for _, t := range r.Items {
			switch t.Flow {
			case core.FlowExpense:
				expense += t.Amount.Units
			case core.FlowIncome:
				income += t.Amount.Units
			}
		}
	}
	return []core.SummaryItem{
		{Label: core.FlowExpense.Label(), Value: core.FormatAmount(expense)},
		{Label: core.FlowIncome.Label(), Value: core.FormatAmount(income)},
		{Label: "Saldo", Value: core.FormatAmount(income - expense)},
	}
}

// ValidationError carries a message fit for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// CreateInput is the payload of a new transaction.
type CreateInput struct {
	Amount          int64  `json:"amount"`
	CategoryID      string `json:"categoryId"`
	Flow            string `json:"type"`
	Note            string `json:"note,omitempty"`
	Title           string `json:"title,omitempty"`
	TransactionDate string `json:"transactionDate,omitempty"`
}

func (s *Service) validate(in CreateInput) (core.Transaction, error) {
	if strings.TrimSpace(in.CategoryID) == "" {
		return core.Transaction{}, &ValidationError{Field: "categoryId", Message: "Kategori wajib dipilih"}
	}
	if in.Amount <= 0 {
		return core.Transaction{}, &ValidationError{Field: "amount", Message: "Nominal harus lebih dari 0"}
	}
	flow, err := core.ParseFlow(in.Flow)
	if err != nil {
		return core.Transaction{}, &ValidationError{Field: "type", Message: "Jenis transaksi tidak valid"}
	}

	date := s.Now()
	if strings.TrimSpace(in.TransactionDate) != "" {
		date, err = core.ParseTransactionDate(in.TransactionDate)
		if err != nil {
			return core.Transaction{}, &ValidationError{Field: "transactionDate", Message: "Tanggal tidak valid"}
		}
	}

	note := strings.TrimSpace(in.Note)
	title := strings.TrimSpace(in.Title)
	switch {
	case title != "":
	case note != "":
		title = note
	default:
		title = "Transaksi"
	}
	if len(title) > 200 {
		return core.Transaction{}, &ValidationError{Field: "title", Message: "Judul maksimal 200 karakter"}
	}

	return core.Transaction{
		Title:      title,
		Amount:     core.Money{Units: in.Amount},
		Flow:       flow,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Date:       date,
		Note:       note,
	}, nil
}

// CreateTransaction validates and stores a single transaction, then
// publishes a sync message. A failed publish does not fail the call: the
// worker picks unsynced rows up on its next poll.
func (s *Service) CreateTransaction(ctx context.Context, in CreateInput) (core.Transaction, error) {
	t, err := s.validate(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if s.store == nil {
		return core.Transaction{}, errors.New("no transaction store configured")
	}
	t.ID = s.newID()

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No sync publisher configured, skipping sync message", "id", t.ID)
		return t, nil
	}
	if err := s.publisher.PublishTransactionSync(ctx, t.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", t.ID, "error", err)
	}
	return t, nil
}
