package payment

import (
	"context"
	"fmt"
	"sync"
)

// FakeGateway is an in-memory Gateway for tests and local development.
// Intents are created in "requires_payment_method" and can be settled with Succeed.
type FakeGateway struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*Intent

	// CreateErr, when set, is returned by CreateIntent
	CreateErr error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{intents: make(map[string]*Intent)}
}

func (f *FakeGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.seq++
	id := fmt.Sprintf("pi_fake_%d", f.seq)
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       "requires_payment_method",
		Metadata:     req.Metadata,
	}
	f.intents[id] = intent
	cp := *intent
	return &cp, nil
}

func (f *FakeGateway) RetrieveIntent(_ context.Context, id string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intent, ok := f.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	cp := *intent
	return &cp, nil
}

// Succeed marks an intent as paid by the given card
func (f *FakeGateway) Succeed(id, paymentMethodID string, card *Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if intent, ok := f.intents[id]; ok {
		intent.Status = StatusSucceeded
		intent.PaymentMethodID = paymentMethodID
		intent.Card = card
	}
}

// Intents returns a snapshot of every intent created so far
func (f *FakeGateway) Intents() []Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Intent, 0, len(f.intents))
	for _, i := range f.intents {
		out = append(out, *i)
	}
	return out
}
