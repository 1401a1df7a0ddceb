package payment

import (
	"context"
	"errors"
)

// StatusSucceeded is the intent status reported once the card has been charged
const StatusSucceeded = "succeeded"

var ErrIntentNotFound = errors.New("payment intent not found")

// IntentRequest describes a charge to create. Amount is in minor units.
type IntentRequest struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Intent is the gateway's view of an in-progress or completed charge
type Intent struct {
	ID              string
	ClientSecret    string
	Amount          int64
	Currency        string
	Status          string
	PaymentMethodID string
	Card            *Card
	Metadata        map[string]string
}

// Card is the display-safe part of the card that paid for an intent
type Card struct {
	Brand string
	Last4 string
}

// Gateway is the port to the third-party payment processor
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}
