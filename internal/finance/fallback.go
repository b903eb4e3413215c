package finance

import (
	"time"

	"catatan/internal/core"
)

// FallbackTransactions is the sample ledger served when the store is
// unreachable or empty.
func FallbackTransactions() []core.Transaction {
	day := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
	return []core.Transaction{
		{
			ID:         "trx-gojek",
			Title:      "gojek",
			Amount:     core.Money{Units: 50000},
			Flow:       core.FlowIncome,
			CategoryID: "transport",
			Date:       day,
		},
		{
			ID:         "trx-marlboro",
			Title:      "Marlboro",
			Amount:     core.Money{Units: 15000},
			Flow:       core.FlowExpense,
			CategoryID: "lifestyle",
			Date:       day,
		},
	}
}

// FallbackCategories are the categories the sample ledger refers to.
func FallbackCategories() []core.Category {
	return []core.Category{
		{ID: "transport", Label: "Transport", IconKey: "FiTruck", IconBg: "bg-emerald-500", Flow: core.FlowIncome},
		{ID: "lifestyle", Label: "Lifestyle", IconKey: "FiCoffee", IconBg: "bg-lime-500", Flow: core.FlowExpense},
	}
}
