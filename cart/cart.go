// Package cart holds the storefront cart: menu item snapshots with a bounded
// quantity, and the money math used to total them.
package cart

import (
	"errors"

	"restaurant-api/models"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 5
)

var (
	// ErrQuantityLimit rejects any mutation that would push a line above MaxQuantity
	ErrQuantityLimit = errors.New("maximum quantity per item is 5")
	// ErrConfirmRemoval is returned instead of dropping a line to zero; the caller
	// must confirm and then call Remove
	ErrConfirmRemoval = errors.New("quantity below 1: confirm removal of this item")
	ErrItemNotInCart  = errors.New("item not in cart")
)

// Line is a menu item snapshot plus quantity
type Line struct {
	models.MenuItem
	Quantity int `json:"quantity"`
}

// Subtotal is price × quantity for the line
func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []Line `json:"lines"`
}

// New builds a cart from stored lines, clamping quantities into range
func New(lines []Line) *Cart {
	return &Cart{Lines: Normalize(lines)}
}

// Normalize drops lines without an item id and clamps quantities to [1,5]
func Normalize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" {
			continue
		}
		l.Quantity = clamp(l.Quantity)
		out = append(out, l)
	}
	return out
}

func clamp(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

func (c *Cart) index(itemID string) int {
	for i, l := range c.Lines {
		if l.ID == itemID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add puts one unit of item in the cart, incrementing an existing line
func (c *Cart) Add(item models.MenuItem) (Line, error) {
	if i := c.index(item.ID); i >= 0 {
		return c.Increment(item.ID)
	}
	line := Line{MenuItem: item, Quantity: MinQuantity}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// Increment raises a line by one. At MaxQuantity it is a no-op returning ErrQuantityLimit.
func (c *Cart) Increment(itemID string) (Line, error) {
	i := c.index(itemID)
	if i < 0 {
		return Line{}, ErrItemNotInCart
	}
	if c.Lines[i].Quantity >= MaxQuantity {
		return c.Lines[i], ErrQuantityLimit
	}
	c.Lines[i].Quantity++
	return c.Lines[i], nil
}

// Decrement lowers a line by one. A line at 1 is left untouched and
// ErrConfirmRemoval is returned.
func (c *Cart) Decrement(itemID string) (Line, error) {
	i := c.index(itemID)
	if i < 0 {
		return Line{}, ErrItemNotInCart
	}
	if c.Lines[i].Quantity <= MinQuantity {
		return c.Lines[i], ErrConfirmRemoval
	}
	c.Lines[i].Quantity--
	return c.Lines[i], nil
}

// SetQuantity sets a line to q, applying the same bounds as Increment/Decrement
func (c *Cart) SetQuantity(itemID string, q int) (Line, error) {
	i := c.index(itemID)
	if i < 0 {
		return Line{}, ErrItemNotInCart
	}
	switch {
	case q < MinQuantity:
		return c.Lines[i], ErrConfirmRemoval
	case q > MaxQuantity:
		return c.Lines[i], ErrQuantityLimit
	}
	c.Lines[i].Quantity = q
	return c.Lines[i], nil
}

// Remove deletes a line entirely
func (c *Cart) Remove(itemID string) error {
	i := c.index(itemID)
	if i < 0 {
		return ErrItemNotInCart
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

// ItemCount is the number of units across all lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Total is Σ(price × quantity), rounded to cents
func (c *Cart) Total() decimal.Decimal {
	return Total(c.Lines)
}

// Total sums price × quantity over lines, rounded to cents
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum.Round(2)
}

// FormatMoney renders an amount with two decimals, e.g. "34.97"
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
