package analytics

import (
	"bytes"
	"testing"
	"time"

	"restaurant-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday
var now = time.Date(2025, time.March, 12, 16, 30, 0, 0, time.UTC)

func order(id string, at time.Time, total string, items ...models.OrderItem) models.Order {
	return models.Order{ID: id, CreatedAt: at, Total: total, Items: items, Status: models.StatusReady}
}

func item(name string, qty int) models.OrderItem {
	return models.OrderItem{Name: name, Quantity: qty, Price: 10}
}

func TestWindow(t *testing.T) {
	start, end := Window(Daily, now)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, 999999999, time.UTC), end)

	start, end = Window(Weekly, now)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 16, 23, 59, 59, 999999999, time.UTC), end)

	sunday := time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC)
	start, _ = Window(Weekly, sunday)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), start)

	start, end = Window(Monthly, now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC), end)
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("")
	require.NoError(t, err)
	assert.Equal(t, Daily, tf)

	tf, err = ParseTimeframe("monthly")
	require.NoError(t, err)
	assert.Equal(t, Monthly, tf)

	_, err = ParseTimeframe("yearly")
	assert.Error(t, err)
}

func TestAggregateEmptyWindow(t *testing.T) {
	orders := []models.Order{
		order("old", now.AddDate(0, -2, 0), "50.00", item("Momo", 2)),
	}
	r := Aggregate(orders, Daily, now, Options{})
	assert.Empty(t, r.Bar)
	assert.Empty(t, r.Line)
	assert.Empty(t, r.Pie)
	assert.Zero(t, r.TotalSales)
	assert.Zero(t, r.ItemsSold)
}

func TestAggregateDaily(t *testing.T) {
	orders := []models.Order{
		order("a", time.Date(2025, 3, 12, 15, 10, 0, 0, time.UTC), "34.97", item("Momo", 2), item("Chowmein", 1)),
		order("b", time.Date(2025, 3, 12, 9, 45, 0, 0, time.UTC), "20.00", item("Momo", 1), item("Lassi", 1)),
		order("c", time.Date(2025, 3, 12, 15, 55, 0, 0, time.UTC), "not-a-number", item("Lassi", 2)),
		order("yesterday", time.Date(2025, 3, 11, 23, 59, 0, 0, time.UTC), "99.00", item("Momo", 5)),
	}

	r := Aggregate(orders, Daily, now, Options{})
	assert.Equal(t, []ItemQuantity{
		{Name: "Lassi", Quantity: 3},
		{Name: "Momo", Quantity: 3},
		{Name: "Chowmein", Quantity: 1},
	}, r.Bar)
	assert.Equal(t, []Bucket{
		{Date: "09:00", Total: 20},
		{Date: "15:00", Total: 34.97},
	}, r.Line)
	assert.Equal(t, 54.97, r.TotalSales)
	assert.Equal(t, 7, r.ItemsSold)

	require.Len(t, r.Pie, 3)
	assert.Equal(t, 42.86, r.Pie[0].Percent)
	assert.Equal(t, 14.29, r.Pie[2].Percent)
}

func TestAggregateWeeklyBucketsByDate(t *testing.T) {
	orders := []models.Order{
		order("mon", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), "10.00", item("Momo", 1)),
		order("wed", time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC), "15.00", item("Momo", 1)),
		order("wed2", time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC), "5.00", item("Lassi", 1)),
		order("prev-sun", time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), "80.00", item("Momo", 4)),
	}
	r := Aggregate(orders, Weekly, now, Options{TopN: 1})
	assert.Equal(t, []Bucket{
		{Date: "2025-03-10", Total: 10},
		{Date: "2025-03-12", Total: 20},
	}, r.Line)
	assert.Equal(t, []ItemQuantity{{Name: "Momo", Quantity: 2}}, r.Bar)
	assert.Equal(t, 3, r.ItemsSold)
}

func TestAggregateIsIdempotent(t *testing.T) {
	orders := []models.Order{
		order("a", now.Add(-time.Hour), "12.50", item("Momo", 1), item("Lassi", 2)),
		order("b", now.Add(-2*time.Hour), "7.25", item("Chowmein", 2)),
	}
	first := Aggregate(orders, Monthly, now, Options{})
	second := Aggregate(orders, Monthly, now, Options{})
	assert.Equal(t, first, second)
}

func TestWriteXLSX(t *testing.T) {
	orders := []models.Order{
		order("a", now.Add(-time.Hour), "12.50", item("Momo", 1)),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(Aggregate(orders, Daily, now, Options{}), &buf))
	// xlsx files are zip archives
	assert.Equal(t, "PK", buf.String()[:2])
}
