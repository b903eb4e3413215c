// Package report turns a transaction list into period reports: it resolves
// period keys to date ranges, enumerates the periods present in the data,
// and aggregates totals, category shares and period-over-period deltas.
//
// Everything here is a pure function of its inputs. "Now" is captured once
// by the caller and passed to NewResolver.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"catatan/internal/core"
)

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularity is the bucketing unit of a report.
type Granularity string

var (
	ErrInvalidGranularity = errors.New("invalid period granularity")
	ErrInvalidPeriodKey   = errors.New("invalid period key")
)

// ParseGranularity accepts day, week, month or year.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case Day, Week, Month, Year:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
}

// Range is an inclusive civil-date range. The zero Range is empty and
// contains nothing; an Unbounded range contains everything.
type Range struct {
	Start     core.Date `json:"start"`
	End       core.Date `json:"end"`
	Unbounded bool      `json:"unbounded,omitempty"`
}

func (r Range) IsEmpty() bool {
	return !r.Unbounded && r.Start.IsZero()
}

func (r Range) Contains(d core.Date) bool {
	if r.Unbounded {
		return true
	}
	if r.IsEmpty() {
		return false
	}
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// Label formats the range as "16 Nov - 22 Nov".
func (r Range) Label() string {
	if r.Unbounded || r.IsEmpty() {
		return ""
	}
	return r.Start.ShortLabel() + " - " + r.End.ShortLabel()
}

// PeriodOption is one selectable period.
type PeriodOption struct {
	Key   string `json:"value"`
	Label string `json:"label"`
}

// Resolver answers period questions relative to a fixed reference date.
type Resolver struct {
	today core.Date
}

// NewResolver freezes now. The civil date is taken in now's location.
func NewResolver(now time.Time) Resolver {
	return Resolver{today: core.DateOf(now)}
}

func (r Resolver) Today() core.Date {
	return r.today
}

// KeyOf encodes the period of g containing d.
func KeyOf(g Granularity, d core.Date) string {
	switch g {
	case Day:
		return d.Key()
	case Week:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%d-W%d", y, w)
	case Month:
		return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
	case Year:
		return strconv.Itoa(d.Year())
	}
	return ""
}

// CurrentKey is the key of the period containing the reference date.
func (r Resolver) CurrentKey(g Granularity) string {
	return KeyOf(g, r.today)
}

// Enumerate lists the distinct periods present in txns, most recent first.
// Options are ordered by period start date rather than by key string, so
// "2025-W10" precedes "2025-W9" where a lexical sort would not.
func (r Resolver) Enumerate(g Granularity, txns []core.Transaction) []PeriodOption {
	starts := make(map[string]core.Date)
	for _, t := range txns {
		key := KeyOf(g, t.Day())
		if _, ok := starts[key]; ok {
			continue
		}
		rng, err := decode(g, key)
		if err != nil {
			continue
		}
		starts[key] = rng.Start
	}

	keys := make([]string, 0, len(starts))
	for k := range starts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return starts[keys[i]].After(starts[keys[j]].Time)
	})

	out := make([]PeriodOption, 0, len(keys))
	for _, k := range keys {
		out = append(out, PeriodOption{Key: k, Label: r.Label(g, k)})
	}
	return out
}

// Label renders the display label of a period key. Malformed keys are
// returned unchanged.
func (r Resolver) Label(g Granularity, key string) string {
	rng, err := decode(g, key)
	if err != nil {
		return key
	}
	current := key == r.CurrentKey(g)
	switch g {
	case Day:
		switch {
		case current:
			return "Hari ini"
		case rng.Start.Equal(r.today.AddDays(-1).Time):
			return "Kemarin"
		}
		return fmt.Sprintf("%s, %s %d", core.DayName(rng.Start.Weekday()), rng.Start.ShortLabel(), rng.Start.Year())
	case Week:
		_, w := rng.Start.ISOWeek()
		if current {
			return fmt.Sprintf("Minggu ini (%s)", rng.Label())
		}
		return fmt.Sprintf("Minggu %d (%s)", w, rng.Label())
	case Month:
		name := core.LongMonth(rng.Start.Month())
		if current {
			return name + " (Bulan ini)"
		}
		return fmt.Sprintf("%s %d", name, rng.Start.Year())
	case Year:
		if current {
			return key + " (Tahun ini)"
		}
		return key
	}
	return key
}

// Range resolves key to its date range. An empty key means the current
// period, except for weeks where it means no filter at all.
func (r Resolver) Range(g Granularity, key string) (Range, error) {
	if key != "" {
		return decode(g, key)
	}
	switch g {
	case Week:
		return Range{Unbounded: true}, nil
	case Day, Month, Year:
		return decode(g, r.CurrentKey(g))
	}
	return Range{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
}

// PreviousKey returns the key of the period immediately before key. For an
// empty key it is the period before the current one, except for weeks where
// it is "" (no comparison period).
//
// Week 1 wraps to week 52 of the previous year; 53-week years are not
// corrected for.
func (r Resolver) PreviousKey(g Granularity, key string) (string, error) {
	if key == "" {
		if g == Week {
			return "", nil
		}
		if _, err := ParseGranularity(string(g)); err != nil {
			return "", err
		}
		key = r.CurrentKey(g)
	}
	switch g {
	case Day:
		rng, err := decode(g, key)
		if err != nil {
			return "", err
		}
		return KeyOf(Day, rng.Start.AddDays(-1)), nil
	case Week:
		y, w, err := parseWeekKey(key)
		if err != nil {
			return "", err
		}
		w--
		if w < 1 {
			w = 52
			y--
		}
		return fmt.Sprintf("%d-W%d", y, w), nil
	case Month:
		y, m, err := parseMonthKey(key)
		if err != nil {
			return "", err
		}
		m--
		if m < 1 {
			m = 12
			y--
		}
		return fmt.Sprintf("%04d-%02d", y, m), nil
	case Year:
		y, err := parseYearKey(key)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(y - 1), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
}

// Previous resolves the range of the period before key (see PreviousKey).
func (r Resolver) Previous(g Granularity, key string) (Range, error) {
	prev, err := r.PreviousKey(g, key)
	if err != nil || prev == "" {
		return Range{}, err
	}
	return decode(g, prev)
}

// Select keeps requested when it is one of options, otherwise picks the most
// recent option. No options yields "".
func Select(options []PeriodOption, requested string) string {
	for _, o := range options {
		if o.Key == requested {
			return requested
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0].Key
}

func decode(g Granularity, key string) (Range, error) {
	switch g {
	case Day:
		t, err := time.Parse("2006-01-02", key)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
		}
		d := core.DateOf(t)
		return Range{Start: d, End: d}, nil
	case Week:
		y, w, err := parseWeekKey(key)
		if err != nil {
			return Range{}, err
		}
		start := isoWeekStart(y, w)
		return Range{Start: start, End: start.AddDays(6)}, nil
	case Month:
		y, m, err := parseMonthKey(key)
		if err != nil {
			return Range{}, err
		}
		start := core.NewDate(y, m, 1)
		return Range{Start: start, End: core.Date{Time: start.AddDate(0, 1, -1)}}, nil
	case Year:
		y, err := parseYearKey(key)
		if err != nil {
			return Range{}, err
		}
		return Range{Start: core.NewDate(y, 1, 1), End: core.NewDate(y, 12, 31)}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
}

// isoWeekStart returns the Monday of ISO week w of year y. Week 1 is the
// week containing January 4th.
func isoWeekStart(y, w int) core.Date {
	jan4 := core.NewDate(y, 1, 4)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDays(-offset + (w-1)*7)
}

// isoWeeksInYear is 52 or 53; December 28th always falls in the last week.
func isoWeeksInYear(y int) int {
	_, w := core.NewDate(y, 12, 28).ISOWeek()
	return w
}

func parseWeekKey(key string) (int, int, error) {
	ys, ws, ok := strings.Cut(key, "-W")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	y, err := parseYearKey(ys)
	if err != nil {
		return 0, 0, err
	}
	w, err := strconv.Atoi(ws)
	if err != nil || len(ws) > 2 || w < 1 || w > isoWeeksInYear(y) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	return y, w, nil
}

func parseMonthKey(key string) (int, int, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	return t.Year(), int(t.Month()), nil
}

func parseYearKey(key string) (int, error) {
	if len(key) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	y, err := strconv.Atoi(key)
	if err != nil || y < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	return y, nil
}
