package core

// DailyTotals holds the formatted per-day totals shown in the ledger.
type DailyTotals struct {
	Expense string `json:"expense"`
	Income  string `json:"income"`
}

// DailyRecord groups the transactions of one civil day.
type DailyRecord struct {
	ID        string        `json:"id"`
	DateLabel string        `json:"dateLabel"`
	Day       string        `json:"day"`
	Totals    DailyTotals   `json:"totals"`
	Items     []Transaction `json:"items"`
}

// SummaryItem is one labelled headline figure (expense, income, balance).
type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
