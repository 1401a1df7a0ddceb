package checkout

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Validation messages returned verbatim to the client
const (
	MsgInvalidProducts     = "Invalid or empty products array"
	MsgInvalidProductData  = "Invalid product data: price and quantity must be numbers"
	MsgNonPositiveTotal    = "Total amount must be greater than zero"
	DefaultCurrency        = "aud"
	minorUnitsPerMajorUnit = 100
)

// ValidationError is a malformed-request failure, surfaced as 400
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Quote is the server-side price of a cart. The client total is never trusted.
type Quote struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	// Amount is Total in minor units (cents)
	Amount int64
}

func (q Quote) SubtotalString() string { return q.Subtotal.StringFixed(2) }
func (q Quote) TotalString() string    { return q.Total.StringFixed(2) }

// Metadata is attached to the payment intent
func (q Quote) Metadata() map[string]string {
	return map[string]string{
		"subtotal": q.SubtotalString(),
		"total":    q.TotalString(),
	}
}

type productPrice struct {
	Price    interface{} `json:"price"`
	Quantity interface{} `json:"quantity"`
}

// ParseProducts decodes the raw products field of a payment intent request.
// Anything that is not a non-empty JSON array is rejected.
func ParseProducts(raw json.RawMessage) ([]json.RawMessage, error) {
	var products []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &products) != nil || len(products) == 0 {
		return nil, &ValidationError{Msg: MsgInvalidProducts}
	}
	return products, nil
}

// Price recomputes subtotal and total from each product's price × quantity.
// Every product must carry a non-zero numeric price and quantity.
func Price(products []json.RawMessage) (Quote, error) {
	if len(products) == 0 {
		return Quote{}, &ValidationError{Msg: MsgInvalidProducts}
	}

	subtotal := decimal.Zero
	for _, raw := range products {
		var p productPrice
		if err := json.Unmarshal(raw, &p); err != nil {
			return Quote{}, &ValidationError{Msg: MsgInvalidProductData}
		}
		price, ok1 := p.Price.(float64)
		qty, ok2 := p.Quantity.(float64)
		if !ok1 || !ok2 || price == 0 || qty == 0 {
			return Quote{}, &ValidationError{Msg: MsgInvalidProductData}
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(qty)))
	}
	total := subtotal // no tax or delivery fee

	if !total.IsPositive() {
		return Quote{}, &ValidationError{Msg: MsgNonPositiveTotal}
	}
	return Quote{
		Subtotal: subtotal,
		Total:    total,
		Amount:   toMinorUnits(total),
	}, nil
}
