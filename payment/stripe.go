package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway creates card payment intents that keep the card for later
// off-session use, and reads back the card that paid.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{api: sc}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SetupFutureUsage:   stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("payment_method")

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	intent := toIntent(pi)

	// payment_method was not expanded: look the card up directly
	if intent.Card == nil && intent.PaymentMethodID != "" {
		pm, err := g.api.PaymentMethods.Get(intent.PaymentMethodID, &stripe.PaymentMethodParams{
			Params: stripe.Params{Context: ctx},
		})
		if err != nil {
			return nil, fmt.Errorf("retrieve payment method %s: %w", intent.PaymentMethodID, err)
		}
		if pm.Card != nil {
			intent.Card = &Card{Brand: string(pm.Card.Brand), Last4: pm.Card.Last4}
		}
	}
	return intent, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	intent := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
	if pi.PaymentMethod != nil {
		intent.PaymentMethodID = pi.PaymentMethod.ID
		if pi.PaymentMethod.Card != nil {
			intent.Card = &Card{
				Brand: string(pi.PaymentMethod.Card.Brand),
				Last4: pi.PaymentMethod.Card.Last4,
			}
		}
	}
	return intent
}
