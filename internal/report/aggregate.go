package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"catatan/internal/catalog"
	"catatan/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CategoryLookup resolves category metadata by id.
type CategoryLookup interface {
	Category(id string) (core.Category, bool)
}

// CategoryShare is one slice of a category breakdown.
type CategoryShare struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	IconKey    string `json:"iconKey,omitempty"`
	Color      string `json:"color"`
	Amount     int64  `json:"amount"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type Totals struct {
	Expense int64 `json:"expense"`
	Income  int64 `json:"income"`
	Balance int64 `json:"balance"`
}

// Deltas are period-over-period changes in percent.
type Deltas struct {
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
	Balance float64 `json:"balance"`
}

type Stats struct {
	Transactions int     `json:"transactions"`
	ExpenseCount int     `json:"expenseCount"`
	IncomeCount  int     `json:"incomeCount"`
	AvgExpense   float64 `json:"avgExpense"`
	AvgIncome    float64 `json:"avgIncome"`
}

// Result is the aggregation of a current period against its predecessor.
type Result struct {
	Current           Totals          `json:"current"`
	Previous          Totals          `json:"previous"`
	ExpenseCategories []CategoryShare `json:"expenseCategories"`
	IncomeCategories  []CategoryShare `json:"incomeCategories"`
	Deltas            Deltas          `json:"deltas"`
	Stats             Stats           `json:"stats"`
}

// FilterByRange keeps the transactions whose civil date lies in r.
// The input slice is not modified.
func FilterByRange(txns []core.Transaction, r Range) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if r.Contains(t.Day()) {
			out = append(out, t)
		}
	}
	return out
}

func SumByFlow(txns []core.Transaction, flow core.Flow) int64 {
	var sum int64
	for _, t := range txns {
		if t.Flow == flow {
			sum += t.Amount.Units
		}
	}
	return sum
}

func countByFlow(txns []core.Transaction, flow core.Flow) int {
	n := 0
	for _, t := range txns {
		if t.Flow == flow {
			n++
		}
	}
	return n
}

// GroupByCategory sums the transactions of one flow per category. Shares are
// ordered by amount descending, then by id.
func GroupByCategory(txns []core.Transaction, flow core.Flow, lookup CategoryLookup) []CategoryShare {
	byID := make(map[string]*CategoryShare)
	var total int64
	for _, t := range txns {
		if t.Flow != flow {
			continue
		}
		total += t.Amount.Units
		s, ok := byID[t.CategoryID]
		if !ok {
			s = newShare(t.CategoryID, lookup)
			byID[t.CategoryID] = s
		}
		s.Amount += t.Amount.Units
		s.Count++
	}

	out := make([]CategoryShare, 0, len(byID))
	for _, s := range byID {
		s.Percentage = percentage(s.Amount, total)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func newShare(id string, lookup CategoryLookup) *CategoryShare {
	s := &CategoryShare{ID: id, Label: id, Color: catalog.DefaultColor}
	if lookup == nil {
		return s
	}
	if c, ok := lookup.Category(id); ok {
		if c.Label != "" {
			s.Label = c.Label
		}
		s.IconKey = c.IconKey
		s.Color = catalog.ResolveColor(c.IconBg)
	}
	return s
}

// percentage is amount/total*100 rounded half away from zero, 0 for an
// empty total.
func percentage(amount, total int64) int {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromInt(amount).Mul(hundred).Div(decimal.NewFromInt(total)).Round(0)
	return int(p.IntPart())
}

// ComputeDelta is the change from previous to current in percent of
// |previous|. A zero previous yields 0.
func ComputeDelta(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	base := decimal.NewFromInt(previous).Abs()
	d := decimal.NewFromInt(current - previous).Div(base).Mul(hundred)
	return d.InexactFloat64()
}

func average(sum int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).InexactFloat64()
}

func totalsOf(txns []core.Transaction) Totals {
	t := Totals{
		Expense: SumByFlow(txns, core.FlowExpense),
		Income:  SumByFlow(txns, core.FlowIncome),
	}
	t.Balance = t.Income - t.Expense
	return t
}

// BuildResult aggregates the transactions of the current period against
// those of the previous one.
func BuildResult(current, previous []core.Transaction, lookup CategoryLookup) Result {
	cur := totalsOf(current)
	prev := totalsOf(previous)
	expenseCount := countByFlow(current, core.FlowExpense)
	incomeCount := countByFlow(current, core.FlowIncome)

	return Result{
		Current:           cur,
		Previous:          prev,
		ExpenseCategories: GroupByCategory(current, core.FlowExpense, lookup),
		IncomeCategories:  GroupByCategory(current, core.FlowIncome, lookup),
		Deltas: Deltas{
			Expense: ComputeDelta(cur.Expense, prev.Expense),
			Income:  ComputeDelta(cur.Income, prev.Income),
			Balance: ComputeDelta(cur.Balance, prev.Balance),
		},
		Stats: Stats{
			Transactions: len(current),
			ExpenseCount: expenseCount,
			IncomeCount:  incomeCount,
			AvgExpense:   average(cur.Expense, expenseCount),
			AvgIncome:    average(cur.Income, incomeCount),
		},
	}
}

// Top returns at most n leading shares.
func Top(shares []CategoryShare, n int) []CategoryShare {
	if n < 0 {
		n = 0
	}
	if len(shares) <= n {
		return shares
	}
	return shares[:n]
}
