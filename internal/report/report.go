package report

import "catatan/internal/core"

// TopCategories is the number of categories shown per flow.
const TopCategories = 5

// Report is a fully resolved period report.
type Report struct {
	Granularity Granularity     `json:"period"`
	Periods     []PeriodOption  `json:"periods"`
	Selected    string          `json:"selected"`
	Label       string          `json:"label"`
	Current     Range           `json:"currentRange"`
	Previous    Range           `json:"previousRange"`
	Result      Result          `json:"result"`
	TopExpense  []CategoryShare `json:"topExpense"`
	TopIncome   []CategoryShare `json:"topIncome"`
	NewerKey    string          `json:"newerKey,omitempty"`
	OlderKey    string          `json:"olderKey,omitempty"`
	CanGoNewer  bool            `json:"canGoNewer"`
	CanGoOlder  bool            `json:"canGoOlder"`
}

// Build enumerates the periods of txns, normalizes requested against them and
// aggregates the selected period against its predecessor.
func (r Resolver) Build(g Granularity, requested string, txns []core.Transaction, lookup CategoryLookup) (Report, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return Report{}, err
	}
	periods := r.Enumerate(g, txns)
	selected := Select(periods, requested)

	cur, err := r.Range(g, selected)
	if err != nil {
		return Report{}, err
	}
	prev, err := r.Previous(g, selected)
	if err != nil {
		return Report{}, err
	}

	res := BuildResult(FilterByRange(txns, cur), FilterByRange(txns, prev), lookup)
	rep := Report{
		Granularity: g,
		Periods:     periods,
		Selected:    selected,
		Current:     cur,
		Previous:    prev,
		Result:      res,
		TopExpense:  Top(res.ExpenseCategories, TopCategories),
		TopIncome:   Top(res.IncomeCategories, TopCategories),
	}
	if selected != "" {
		rep.Label = r.Label(g, selected)
	}

	for i, p := range periods {
		if p.Key != selected {
			continue
		}
		if i > 0 {
			rep.NewerKey = periods[i-1].Key
			rep.CanGoNewer = true
		}
		if i < len(periods)-1 {
			rep.OlderKey = periods[i+1].Key
			rep.CanGoOlder = true
		}
		break
	}
	return rep, nil
}
