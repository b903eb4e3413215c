package core

import (
	"errors"
	"strings"
	"time"
)

const (
	FlowExpense Flow = "expense"
	FlowIncome  Flow = "income"
)

type (
	// Flow is the direction of a transaction. Amounts are always stored
	// positive; the sign is derived from the flow at display time.
	Flow string

	Date struct {
		time.Time
	}

	// Money is an amount in the smallest unit of the currency (whole Rupiah).
	Money struct {
		Units int64
	}

	Transaction struct {
		ID         string    `json:"id"`
		Title      string    `json:"title,omitempty"`
		Amount     Money     `json:"amount"`
		Flow       Flow      `json:"type"`
		CategoryID string    `json:"categoryId"`
		Date       time.Time `json:"transaction_date"`
		Note       string    `json:"note,omitempty"`
	}

	Category struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		IconKey string `json:"iconKey"`
		IconBg  string `json:"iconBg"`
		Flow    Flow   `json:"flow"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidFlow   = errors.New("invalid flow")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
)

// ParseFlow accepts "expense" or "income", case-insensitive.
func ParseFlow(s string) (Flow, error) {
	f := Flow(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", ErrInvalidFlow
	}
	return f, nil
}

func (f Flow) Valid() bool {
	return f == FlowExpense || f == FlowIncome
}

// Label returns the display name of the flow.
func (f Flow) Label() string {
	switch f {
	case FlowExpense:
		return "Pengeluaran"
	case FlowIncome:
		return "Pemasukan"
	default:
		return string(f)
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil date of t as written in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Key formats the date as YYYY-MM-DD.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Units <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Day returns the civil date used for period bucketing.
func (t Transaction) Day() Date {
	return DateOf(t.Date)
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Flow.Valid() {
		return ErrInvalidFlow
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Title) > 200 {
		return ErrTitleTooLong
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTransactionDate parses an ISO-8601 date or date-time. Unparseable
// input is rejected with ErrInvalidDate rather than coerced.
func ParseTransactionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
