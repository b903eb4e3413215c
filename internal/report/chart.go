package report

import (
	"fmt"
	"strconv"

	"catatan/internal/core"
)

const timelineLength = 5

// TimelinePoint is one entry of the period strip under a chart.
type TimelinePoint struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ChartSection is the donut chart dataset of one flow over one period.
type ChartSection struct {
	Granularity  Granularity     `json:"period"`
	Flow         core.Flow       `json:"flow"`
	Key          string          `json:"key"`
	Title        string          `json:"title"`
	DateLabel    string          `json:"dateLabel"`
	Total        int64           `json:"total"`
	Categories   []CategoryShare `json:"categories"`
	Timeline     []TimelinePoint `json:"timeline"`
	CurrentIndex int             `json:"currentIndex"`
}

// BuildChart aggregates flow over the period key of g. An empty key selects
// the current period. CurrentIndex is -1 when the period is older than the
// timeline.
func BuildChart(r Resolver, g Granularity, flow core.Flow, key string, txns []core.Transaction, lookup CategoryLookup) (ChartSection, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return ChartSection{}, err
	}
	if !flow.Valid() {
		return ChartSection{}, fmt.Errorf("%w: %q", core.ErrInvalidFlow, flow)
	}
	if key == "" {
		key = r.CurrentKey(g)
	}
	rng, err := decode(g, key)
	if err != nil {
		return ChartSection{}, err
	}

	inRange := FilterByRange(txns, rng)
	c := ChartSection{
		Granularity:  g,
		Flow:         flow,
		Key:          key,
		Total:        SumByFlow(inRange, flow),
		Categories:   GroupByCategory(inRange, flow, lookup),
		Timeline:     r.Timeline(g),
		CurrentIndex: -1,
	}
	c.Title, c.DateLabel = r.chartTitle(g, key, rng)
	for i, p := range c.Timeline {
		if p.Key == key {
			c.CurrentIndex = i
			break
		}
	}
	return c, nil
}

func (r Resolver) chartTitle(g Granularity, key string, rng Range) (string, string) {
	start := rng.Start
	switch g {
	case Day:
		dateLabel := core.DayName(start.Weekday()) + ", " + start.ShortLabel()
		switch {
		case key == r.CurrentKey(Day):
			return "Hari ini", dateLabel
		case key == KeyOf(Day, r.today.AddDays(-1)):
			return "Kemarin", dateLabel
		}
		return fmt.Sprintf("%s %d", start.ShortLabel(), start.Year()), dateLabel
	case Week:
		switch key {
		case r.CurrentKey(Week):
			return "Minggu ini", rng.Label()
		case KeyOf(Week, r.today.AddDays(-7)):
			return "Minggu lalu", rng.Label()
		}
		_, w := start.ISOWeek()
		return fmt.Sprintf("Minggu %d", w), rng.Label()
	case Month:
		return core.LongMonth(start.Month()), strconv.Itoa(start.Year())
	case Year:
		return key, core.ShortMonth(1) + " - " + core.ShortMonth(12)
	}
	return key, ""
}

// Timeline lists the last few periods of g ending with the current one,
// oldest first.
func (r Resolver) Timeline(g Granularity) []TimelinePoint {
	out := make([]TimelinePoint, 0, timelineLength)
	for back := timelineLength - 1; back >= 0; back-- {
		d := r.stepBack(g, back)
		out = append(out, TimelinePoint{Key: KeyOf(g, d), Label: timelineLabel(g, d, back)})
	}
	return out
}

func (r Resolver) stepBack(g Granularity, n int) core.Date {
	t := r.today
	switch g {
	case Week:
		return t.AddDays(-7 * n)
	case Month:
		return core.NewDate(t.Year(), int(t.Month())-n, 1)
	case Year:
		return core.NewDate(t.Year()-n, 1, 1)
	}
	return t.AddDays(-n)
}

func timelineLabel(g Granularity, d core.Date, back int) string {
	switch g {
	case Day:
		switch back {
		case 0:
			return "Hari ini"
		case 1:
			return "Kemarin"
		}
		return core.DayName(d.Weekday())
	case Week:
		switch back {
		case 0:
			return "Minggu ini"
		case 1:
			return "Minggu lalu"
		}
		_, w := d.ISOWeek()
		return fmt.Sprintf("Minggu %d", w)
	case Month:
		switch back {
		case 0:
			return "Bulan ini"
		case 1:
			return "Bulan lalu"
		}
		return core.ShortMonth(d.Month())
	case Year:
		switch back {
		case 0:
			return "Tahun ini"
		case 1:
			return "Tahun lalu"
		}
		return strconv.Itoa(d.Year())
	}
	return ""
}
