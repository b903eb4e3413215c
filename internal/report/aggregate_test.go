package report

import (
	"reflect"
	"testing"

	"catatan/internal/catalog"
	"catatan/internal/core"
)

func lookup() CategoryLookup {
	return catalog.NewLookup([]core.Category{
		{ID: "transport", Label: "Transport", IconKey: "car", IconBg: "bg-emerald-500", Flow: core.FlowIncome},
		{ID: "lifestyle", Label: "Lifestyle", IconKey: "sparkles", IconBg: "bg-lime-500", Flow: core.FlowExpense},
		{ID: "makan", Label: "Makan", IconBg: "bg-orange-500", Flow: core.FlowExpense},
	})
}

func mockTransactions() []core.Transaction {
	return []core.Transaction{
		txn("trx-gojek", 50000, core.FlowIncome, "transport", 2025, 11, 20),
		txn("trx-marlboro", 15000, core.FlowExpense, "lifestyle", 2025, 11, 20),
	}
}

func TestSumByFlowIsExhaustive(t *testing.T) {
	txns := []core.Transaction{
		txn("a", 120, core.FlowExpense, "x", 2025, 1, 1),
		txn("b", 75, core.FlowIncome, "y", 2025, 1, 2),
		txn("c", 5, core.FlowExpense, "y", 2025, 1, 3),
		txn("d", 1000, core.FlowIncome, "x", 2025, 1, 4),
	}
	var all int64
	for _, tx := range txns {
		all += tx.Amount.Units
	}
	if got := SumByFlow(txns, core.FlowExpense) + SumByFlow(txns, core.FlowIncome); got != all {
		t.Fatalf("expense+income = %d, want %d", got, all)
	}
	if SumByFlow(nil, core.FlowExpense) != 0 {
		t.Fatalf("empty sum should be 0")
	}
}

func TestFilterByRange(t *testing.T) {
	txns := []core.Transaction{
		txn("before", 1, core.FlowExpense, "x", 2025, 10, 31),
		txn("first", 1, core.FlowExpense, "x", 2025, 11, 1),
		txn("last", 1, core.FlowExpense, "x", 2025, 11, 30),
		txn("after", 1, core.FlowExpense, "x", 2025, 12, 1),
	}
	rng := Range{Start: core.NewDate(2025, 11, 1), End: core.NewDate(2025, 11, 30)}
	got := FilterByRange(txns, rng)
	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "last" {
		t.Fatalf("unexpected filter result %v", got)
	}
	if len(txns) != 4 || txns[0].ID != "before" {
		t.Fatalf("input slice was modified")
	}
	if len(FilterByRange(txns, Range{})) != 0 {
		t.Fatalf("empty range should match nothing")
	}
	if len(FilterByRange(txns, Range{Unbounded: true})) != 4 {
		t.Fatalf("unbounded range should match everything")
	}
}

func TestGroupByCategory(t *testing.T) {
	txns := []core.Transaction{
		txn("1", 30000, core.FlowExpense, "makan", 2025, 11, 1),
		txn("2", 15000, core.FlowExpense, "lifestyle", 2025, 11, 2),
		txn("3", 10000, core.FlowExpense, "makan", 2025, 11, 3),
		txn("4", 5000, core.FlowExpense, "unknown", 2025, 11, 4),
		txn("5", 99999, core.FlowIncome, "transport", 2025, 11, 4),
	}
	got := GroupByCategory(txns, core.FlowExpense, lookup())
	want := []CategoryShare{
		{ID: "makan", Label: "Makan", Color: catalog.ResolveColor("bg-orange-500"), Amount: 40000, Count: 2, Percentage: 67},
		{ID: "lifestyle", Label: "Lifestyle", IconKey: "sparkles", Color: catalog.ResolveColor("bg-lime-500"), Amount: 15000, Count: 1, Percentage: 25},
		{ID: "unknown", Label: "unknown", Color: catalog.DefaultColor, Amount: 5000, Count: 1, Percentage: 8},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GroupByCategory =\n%+v\nwant\n%+v", got, want)
	}
}

func TestGroupByCategoryTieBreakIsDeterministic(t *testing.T) {
	txns := []core.Transaction{
		txn("1", 100, core.FlowExpense, "zeta", 2025, 1, 1),
		txn("2", 100, core.FlowExpense, "alpha", 2025, 1, 1),
		txn("3", 100, core.FlowExpense, "mid", 2025, 1, 1),
	}
	for i := 0; i < 10; i++ {
		got := GroupByCategory(txns, core.FlowExpense, nil)
		if got[0].ID != "alpha" || got[1].ID != "mid" || got[2].ID != "zeta" {
			t.Fatalf("unexpected order %v", got)
		}
	}
}

func TestGroupByCategoryPercentagesSum(t *testing.T) {
	tests := []struct {
		name    string
		amounts []int64
	}{
		{"thirds", []int64{1, 1, 1}},
		{"uneven", []int64{7, 13, 29, 51}},
		{"single", []int64{42}},
		{"many", []int64{3, 5, 7, 11, 13, 17, 19}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var txns []core.Transaction
			for i, a := range tc.amounts {
				txns = append(txns, txn("t", a, core.FlowIncome, string(rune('a'+i)), 2025, 1, 1))
			}
			shares := GroupByCategory(txns, core.FlowIncome, nil)
			sum := 0
			for _, s := range shares {
				sum += s.Percentage
			}
			diff := sum - 100
			if diff < 0 {
				diff = -diff
			}
			if diff > len(shares) {
				t.Fatalf("percentages sum to %d over %d categories", sum, len(shares))
			}
		})
	}
	if got := GroupByCategory(nil, core.FlowIncome, nil); len(got) != 0 {
		t.Fatalf("expected no shares, got %v", got)
	}
}

func TestComputeDelta(t *testing.T) {
	tests := []struct {
		cur, prev int64
		want      float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{80000, 0, 0},
		{-5, 0, 0},
		{0, 0, 0},
		{100, -50, 300},
		{-100, -50, -100},
	}
	for _, tc := range tests {
		if got := ComputeDelta(tc.cur, tc.prev); got != tc.want {
			t.Errorf("ComputeDelta(%d, %d) = %v, want %v", tc.cur, tc.prev, got, tc.want)
		}
	}
}

func TestBuildResultScenario(t *testing.T) {
	res := BuildResult(mockTransactions(), nil, lookup())
	if res.Current.Expense != 15000 || res.Current.Income != 50000 || res.Current.Balance != 35000 {
		t.Fatalf("unexpected totals %+v", res.Current)
	}
	if len(res.ExpenseCategories) != 1 || res.ExpenseCategories[0].Percentage != 100 {
		t.Fatalf("expected single expense category at 100%%, got %+v", res.ExpenseCategories)
	}
	if len(res.IncomeCategories) != 1 || res.IncomeCategories[0].Percentage != 100 {
		t.Fatalf("expected single income category at 100%%, got %+v", res.IncomeCategories)
	}
	if res.Deltas != (Deltas{}) {
		t.Fatalf("expected zero deltas without a previous period, got %+v", res.Deltas)
	}
	want := Stats{Transactions: 2, ExpenseCount: 1, IncomeCount: 1, AvgExpense: 15000, AvgIncome: 50000}
	if res.Stats != want {
		t.Fatalf("stats = %+v, want %+v", res.Stats, want)
	}
}

func TestBuildResultEmpty(t *testing.T) {
	res := BuildResult(nil, nil, nil)
	if res.Current != (Totals{}) || res.Previous != (Totals{}) || res.Deltas != (Deltas{}) || res.Stats != (Stats{}) {
		t.Fatalf("expected zero result, got %+v", res)
	}
	if len(res.ExpenseCategories) != 0 || len(res.IncomeCategories) != 0 {
		t.Fatalf("expected empty breakdowns")
	}
}

func TestBuildResultZeroPreviousIncome(t *testing.T) {
	current := []core.Transaction{txn("a", 80000, core.FlowIncome, "gaji", 2025, 11, 3)}
	previous := []core.Transaction{txn("b", 20000, core.FlowExpense, "makan", 2025, 10, 3)}
	res := BuildResult(current, previous, nil)
	if res.Deltas.Income != 0 {
		t.Fatalf("income delta = %v, want 0", res.Deltas.Income)
	}
	if res.Deltas.Expense != -100 {
		t.Fatalf("expense delta = %v, want -100", res.Deltas.Expense)
	}
	// balance went from -20000 to 80000
	if res.Deltas.Balance != 500 {
		t.Fatalf("balance delta = %v, want 500", res.Deltas.Balance)
	}
}

func TestTop(t *testing.T) {
	shares := make([]CategoryShare, 7)
	if len(Top(shares, TopCategories)) != 5 {
		t.Fatalf("expected 5 shares")
	}
	if len(Top(shares[:3], TopCategories)) != 3 {
		t.Fatalf("expected all 3 shares")
	}
	if len(Top(shares, -1)) != 0 {
		t.Fatalf("negative n should yield nothing")
	}
}

func TestBuildReport(t *testing.T) {
	r := NewResolver(refNow)
	txns := append(mockTransactions(),
		txn("oct", 10000, core.FlowExpense, "lifestyle", 2025, 10, 5),
		txn("sep", 1, core.FlowExpense, "lifestyle", 2025, 9, 5),
	)

	rep, err := r.Build(Month, "2030-01", txns, lookup())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rep.Selected != "2025-11" || rep.Label != "November (Bulan ini)" {
		t.Fatalf("unexpected selection %q %q", rep.Selected, rep.Label)
	}
	if rep.Result.Deltas.Expense != 50 {
		t.Fatalf("expense delta = %v, want 50", rep.Result.Deltas.Expense)
	}
	if rep.CanGoNewer || !rep.CanGoOlder || rep.OlderKey != "2025-10" {
		t.Fatalf("unexpected navigation %+v", rep)
	}

	rep, err = r.Build(Month, "2025-10", txns, lookup())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !rep.CanGoNewer || rep.NewerKey != "2025-11" || rep.OlderKey != "2025-09" {
		t.Fatalf("unexpected navigation %+v", rep)
	}

	rep, err = r.Build(Week, "", nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rep.Selected != "" || rep.Label != "" || len(rep.Periods) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}

	if _, err := r.Build("decade", "", txns, nil); err == nil {
		t.Fatalf("expected granularity error")
	}
}
