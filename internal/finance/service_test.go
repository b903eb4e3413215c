package finance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catatan/internal/catalog"
	"catatan/internal/core"
)

type fakeStore struct {
	mu      sync.Mutex
	txns    []core.Transaction
	listErr error
	saveErr error
	created []core.Transaction
}

func (f *fakeStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Transaction(nil), f.txns...), f.listErr
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.created = append(f.created, t)
	return nil
}

type fakePublisher struct {
	ids []string
	err error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

var fixedNow = time.Date(2025, time.November, 20, 9, 30, 0, 0, time.UTC)

func newService(store Store, opts ...Option) *Service {
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "id-1" }),
		WithLocation(time.UTC),
	}, opts...)
	return New(store, catalog.NewTwoTier(nil, nil), opts...)
}

func txn(id string, flow core.Flow, amount int64, date time.Time) core.Transaction {
	return core.Transaction{ID: id, Flow: flow, Amount: core.Money{Units: amount}, CategoryID: "makanan", Date: date}
}

func TestListTransactionsFallback(t *testing.T) {
	tests := []struct {
		name  string
		store Store
	}{
		{"nil store", nil},
		{"store error", &fakeStore{listErr: errors.New("db down")}},
		{"empty store", &fakeStore{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := newService(tc.store).ListTransactions(context.Background())
			if len(got) != 2 || got[0].ID != "trx-gojek" || got[1].ID != "trx-marlboro" {
				t.Fatalf("expected fallback set, got %v", got)
			}
		})
	}
}

func TestListTransactionsFromStore(t *testing.T) {
	store := &fakeStore{txns: []core.Transaction{txn("a", core.FlowExpense, 1000, fixedNow)}}
	got := newService(store).ListTransactions(context.Background())
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected store rows, got %v", got)
	}
}

func TestBuildDailyRecords(t *testing.T) {
	day1 := time.Date(2025, time.November, 19, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, time.November, 20, 7, 0, 0, 0, time.UTC)
	input := []core.Transaction{
		txn("a", core.FlowExpense, 15000, day2),
		txn("b", core.FlowIncome, 50000, day1),
		txn("c", core.FlowExpense, 2500, day2.Add(5*time.Hour)),
	}

	records := BuildDailyRecords(input)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "2025-11-20" || first.DateLabel != "20 Nov" || first.Day != "Kamis" {
		t.Fatalf("unexpected first record header %+v", first)
	}
	if first.Totals.Expense != "17.500" || first.Totals.Income != "0" {
		t.Fatalf("unexpected totals %+v", first.Totals)
	}
	if first.Items[0].ID != "c" || first.Items[1].ID != "a" {
		t.Fatalf("items must be newest first, got %s, %s", first.Items[0].ID, first.Items[1].ID)
	}
	if records[1].ID != "2025-11-19" || records[1].Day != "Rabu" || records[1].Totals.Income != "50.000" {
		t.Fatalf("unexpected second record %+v", records[1])
	}

	if input[0].ID != "a" || input[2].ID != "c" {
		t.Fatalf("input slice was reordered")
	}
}

func TestBuildDailyRecordsTieBreaksByID(t *testing.T) {
	at := time.Date(2025, time.November, 20, 12, 0, 0, 0, time.UTC)
	records := BuildDailyRecords([]core.Transaction{
		txn("z", core.FlowExpense, 1, at),
		txn("m", core.FlowExpense, 1, at),
		txn("b", core.FlowIncome, 1, at),
	})
	var got []string
	for _, it := range records[0].Items {
		got = append(got, it.ID)
	}
	if len(got) != 3 || got[0] != "b" || got[1] != "m" || got[2] != "z" {
		t.Fatalf("expected id order b, m, z for equal timestamps, got %v", got)
	}
}

func TestBuildDailyRecordsUsesCivilDate(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	late := time.Date(2025, time.November, 20, 23, 30, 0, 0, wib)
	records := BuildDailyRecords([]core.Transaction{txn("a", core.FlowExpense, 1, late)})
	if records[0].ID != "2025-11-20" {
		t.Fatalf("expected civil date of the recorded zone, got %s", records[0].ID)
	}
}

func TestSummaryItems(t *testing.T) {
	items := SummaryItems(BuildDailyRecords(FallbackTransactions()))
	want := []core.SummaryItem{
		{Label: "Pengeluaran", Value: "15.000"},
		{Label: "Pemasukan", Value: "50.000"},
		{Label: "Saldo", Value: "35.000"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d: got %+v, want %+v", i, items[i], want[i])
		}
	}

	neg := SummaryItems(BuildDailyRecords([]core.Transaction{txn("a", core.FlowExpense, 1500, fixedNow)}))
	if neg[2].Value != "-1.500" {
		t.Fatalf("expected negative balance, got %s", neg[2].Value)
	}
}

func TestSnapshotResolvesFallbackCategories(t *testing.T) {
	snap, err := newService(nil).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Transactions) != 2 {
		t.Fatalf("expected fallback transactions, got %d", len(snap.Transactions))
	}
	if len(snap.Categories) != 32 {
		t.Fatalf("expected seed categories, got %d", len(snap.Categories))
	}
	if c, ok := snap.Lookup.Category("transport"); !ok || c.Label != "Transport" {
		t.Fatalf("fallback category missing from lookup: %v %v", c, ok)
	}
	if _, ok := snap.Lookup.Category("gaji"); !ok {
		t.Fatalf("seed category missing from lookup")
	}
}

func TestSnapshotCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newService(nil).Snapshot(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOverview(t *testing.T) {
	ov, err := newService(&fakeStore{}).Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.DailyRecords) != 1 || ov.DailyRecords[0].ID != "2025-11-20" {
		t.Fatalf("unexpected records %+v", ov.DailyRecords)
	}
	if ov.SummaryItems[2].Value != "35.000" {
		t.Fatalf("unexpected balance %s", ov.SummaryItems[2].Value)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		field string
		msg   string
	}{
		{"missing category", CreateInput{Amount: 1000, Flow: "expense"}, "categoryId", "Kategori wajib dipilih"},
		{"zero amount", CreateInput{CategoryID: "makanan", Flow: "expense"}, "amount", "Nominal harus lebih dari 0"},
		{"negative amount", CreateInput{CategoryID: "makanan", Amount: -5, Flow: "expense"}, "amount", "Nominal harus lebih dari 0"},
		{"bad flow", CreateInput{CategoryID: "makanan", Amount: 5, Flow: "transfer"}, "type", "Jenis transaksi tidak valid"},
		{"bad date", CreateInput{CategoryID: "makanan", Amount: 5, Flow: "income", TransactionDate: "20/11/2025"}, "transactionDate", "Tanggal tidak valid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			_, err := newService(store).CreateTransaction(context.Background(), tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field || verr.Message != tc.msg {
				t.Fatalf("got %s %q, want %s %q", verr.Field, verr.Message, tc.field, tc.msg)
			}
			if len(store.created) != 0 {
				t.Fatalf("invalid input must not be stored")
			}
		})
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		title string
	}{
		{"explicit title", CreateInput{Title: "Kopi", Note: "pagi"}, "Kopi"},
		{"note as title", CreateInput{Note: "pagi"}, "pagi"},
		{"default title", CreateInput{}, "Transaksi"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Amount, tc.in.CategoryID, tc.in.Flow = 12000, "makanan", "expense"
			store := &fakeStore{}
			got, err := newService(store).CreateTransaction(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if got.Title != tc.title {
				t.Fatalf("title = %q, want %q", got.Title, tc.title)
			}
			if got.ID != "id-1" || !got.Date.Equal(fixedNow) {
				t.Fatalf("unexpected defaults id=%s date=%s", got.ID, got.Date)
			}
			if len(store.created) != 1 || store.created[0].ID != "id-1" {
				t.Fatalf("transaction was not stored")
			}
		})
	}
}

func TestCreateTransactionParsesDate(t *testing.T) {
	store := &fakeStore{}
	got, err := newService(store).CreateTransaction(context.Background(), CreateInput{
		Amount: 1, CategoryID: "gaji", Flow: "INCOME", TransactionDate: "2025-01-05",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Flow != core.FlowIncome || got.Day().Key() != "2025-01-05" {
		t.Fatalf("unexpected transaction %+v", got)
	}
}

func TestCreateTransactionPublishes(t *testing.T) {
	pub := &fakePublisher{}
	_, err := newService(&fakeStore{}, WithPublisher(pub)).CreateTransaction(context.Background(),
		CreateInput{Amount: 1, CategoryID: "gaji", Flow: "income"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.ids) != 1 || pub.ids[0] != "id-1" {
		t.Fatalf("expected one publish for id-1, got %v", pub.ids)
	}
}

func TestCreateTransactionPublishFailureIsIgnored(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	store := &fakeStore{}
	if _, err := newService(store, WithPublisher(pub)).CreateTransaction(context.Background(),
		CreateInput{Amount: 1, CategoryID: "gaji", Flow: "income"}); err != nil {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("transaction should still be stored")
	}
}

func TestCreateTransactionStoreError(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeStore{saveErr: errors.New("disk full")}
	_, err := newService(store, WithPublisher(pub)).CreateTransaction(context.Background(),
		CreateInput{Amount: 1, CategoryID: "gaji", Flow: "income"})
	if err == nil || IsValidation(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(pub.ids) != 0 {
		t.Fatalf("nothing should be published when the save fails")
	}
}
