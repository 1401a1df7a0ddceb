// Package analytics aggregates orders inside a time window into chart-ready series
package analytics

import (
	"fmt"
	"sort"
	"time"

	"restaurant-api/models"

	"github.com/shopspring/decimal"
)

type Timeframe string

const (
	Daily   Timeframe = "daily"
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
)

const (
	hourLayout = "15:00"
	dateLayout = "2006-01-02"
)

// ParseTimeframe accepts daily, weekly or monthly; empty means daily
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case "", Daily:
		return Daily, nil
	case Weekly, Monthly:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("invalid timeframe %q: must be daily, weekly or monthly", s)
}

// ItemQuantity is one bar: units sold of a named item
type ItemQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Bucket is one point of the sales-over-time line
type Bucket struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// Share is one pie slice
type Share struct {
	Name    string  `json:"name"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

type Report struct {
	Timeframe  Timeframe      `json:"timeframe"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Bar        []ItemQuantity `json:"bar"`
	Line       []Bucket       `json:"line"`
	Pie        []Share        `json:"pie"`
	TotalSales float64        `json:"totalSales"`
	ItemsSold  int            `json:"itemsSold"`
}

type Options struct {
	// TopN truncates Bar and Pie to the N best sellers; zero keeps all
	TopN int
}

// Window returns the inclusive [start, end] of the period containing now, in
// now's location. Weeks start on Monday.
func Window(tf Timeframe, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var start, next time.Time
	switch tf {
	case Weekly:
		offset := (int(now.Weekday()) + 6) % 7
		start = dayStart.AddDate(0, 0, -offset)
		next = start.AddDate(0, 0, 7)
	case Monthly:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	default:
		start = dayStart
		next = start.AddDate(0, 0, 1)
	}
	return start, next.Add(-time.Nanosecond)
}

// Aggregate is a pure function of its inputs. Orders outside the window are
// ignored; unparseable totals count as zero.
func Aggregate(orders []models.Order, tf Timeframe, now time.Time, opts Options) Report {
	start, end := Window(tf, now)
	layout := dateLayout
	if tf == Daily {
		layout = hourLayout
	}

	quantities := map[string]int{}
	bucketTotals := map[string]decimal.Decimal{}
	bucketTimes := map[string]time.Time{}
	totalSales := decimal.Zero
	itemsSold := 0

	for _, o := range orders {
		created := o.CreatedAt.In(now.Location())
		if created.Before(start) || created.After(end) {
			continue
		}
		total, err := decimal.NewFromString(o.Total)
		if err != nil {
			total = decimal.Zero
		}
		totalSales = totalSales.Add(total)

		for _, it := range o.Items {
			if it.Quantity <= 0 {
				continue
			}
			quantities[it.Name] += it.Quantity
			itemsSold += it.Quantity
		}

		key := created.Format(layout)
		bucketTotals[key] = bucketTotals[key].Add(total)
		if t, ok := bucketTimes[key]; !ok || created.Before(t) {
			bucketTimes[key] = created
		}
	}

	bar := make([]ItemQuantity, 0, len(quantities))
	for name, q := range quantities {
		bar = append(bar, ItemQuantity{Name: name, Quantity: q})
	}
	sort.Slice(bar, func(i, j int) bool {
		if bar[i].Quantity != bar[j].Quantity {
			return bar[i].Quantity > bar[j].Quantity
		}
		return bar[i].Name < bar[j].Name
	})
	if opts.TopN > 0 && len(bar) > opts.TopN {
		bar = bar[:opts.TopN]
	}

	pie := make([]Share, 0, len(bar))
	for _, b := range bar {
		var pct float64
		if itemsSold > 0 {
			pct, _ = decimal.NewFromInt(int64(b.Quantity)).
				Div(decimal.NewFromInt(int64(itemsSold))).
				Mul(decimal.NewFromInt(100)).
				Round(2).Float64()
		}
		pie = append(pie, Share{Name: b.Name, Value: b.Quantity, Percent: pct})
	}

	line := make([]Bucket, 0, len(bucketTotals))
	for key, total := range bucketTotals {
		f, _ := total.Round(2).Float64()
		line = append(line, Bucket{Date: key, Total: f})
	}
	sort.Slice(line, func(i, j int) bool {
		return bucketTimes[line[i].Date].Before(bucketTimes[line[j].Date])
	})

	sales, _ := totalSales.Round(2).Float64()
	return Report{
		Timeframe:  tf,
		Start:      start,
		End:        end,
		Bar:        bar,
		Line:       line,
		Pie:        pie,
		TotalSales: sales,
		ItemsSold:  itemsSold,
	}
}
