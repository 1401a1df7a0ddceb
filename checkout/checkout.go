// Package checkout turns a cart into a paid order: it prices carts for the payment
// gateway, gates checkout on authentication and records the order once the
// gateway reports the charge succeeded.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"restaurant-api/cart"
	"restaurant-api/loyalty"
	"restaurant-api/models"
	"restaurant-api/payment"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "checkout").Logger()

var (
	ErrEmptyCart           = errors.New("your cart is empty")
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
	ErrMissingIdentifiers  = errors.New("paymentIntentId and userId are required")
	ErrIntentOwner         = errors.New("payment intent belongs to another user")
)

// MetadataUserID is the intent metadata key naming the user who opened the charge
const MetadataUserID = "userId"

// LoginPath is where unauthenticated shoppers are sent before paying
const LoginPath = "/login"

// Redirect tells the client to sign in first, carrying the cart along
type Redirect struct {
	To          string      `json:"redirect"`
	PendingCart []cart.Line `json:"pendingCart"`
}

// Begin gates the start of checkout. An empty cart is an error; a guest gets a
// Redirect to sign-in; an authenticated user gets (nil, nil) and may pay.
func Begin(c *cart.Cart, userID string) (*Redirect, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if userID == "" {
		return &Redirect{To: LoginPath, PendingCart: c.Lines}, nil
	}
	return nil, nil
}

// Store persists what a completed checkout produces
type Store interface {
	// FindOrder returns (nil, nil) when no order exists for id
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	SavePayment(ctx context.Context, record *models.PaymentRecord) error
	MergeProfile(ctx context.Context, userID string, details models.UserDetails) error
	AddPoints(ctx context.Context, userID string, points decimal.Decimal) error
	Points(ctx context.Context, userID string) (decimal.Decimal, error)
	SetPoints(ctx context.Context, userID string, points decimal.Decimal) error
	SaveCardDetails(ctx context.Context, details *models.CardDetails) error
}

// ClientState is the per-client cart and pending order storage
type ClientState interface {
	Cart(ctx context.Context, clientID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, clientID string) error
	PendingOrder(ctx context.Context, clientID string) (*PendingOrder, error)
	SavePendingOrder(ctx context.Context, clientID string, order *PendingOrder) error
	ClearPendingOrder(ctx context.Context, clientID string) error
}

// Publisher receives live updates for subscribers of a topic
type Publisher interface {
	Publish(topic string, payload interface{})
}

// PendingOrder is the snapshot saved when a customer prepares an order and
// redeems loyalty points, before paying
type PendingOrder struct {
	Name        string      `json:"name"`
	PhoneNumber string      `json:"phoneNumber"`
	Items       []cart.Line `json:"items"`
	Subtotal    string      `json:"subtotal"`
	Discount    string      `json:"discount"`
	Total       string      `json:"total"`
	// PointsApplied is set once the redemption has been written to the profile
	PointsApplied bool                `json:"pointsApplied"`
	Redemption    *loyalty.Redemption `json:"redemption,omitempty"`
}

type Service struct {
	gateway  payment.Gateway
	store    Store
	state    ClientState
	feed     Publisher
	currency string
	now      func() time.Time
}

func NewService(gateway payment.Gateway, store Store, state ClientState, feed Publisher) *Service {
	return &Service{
		gateway:  gateway,
		store:    store,
		state:    state,
		feed:     feed,
		currency: DefaultCurrency,
		now:      time.Now,
	}
}

// WithCurrency overrides the charge currency
func (s *Service) WithCurrency(currency string) *Service {
	if currency != "" {
		s.currency = currency
	}
	return s
}

// IntentResult is returned to the payment widget
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	Subtotal        string `json:"subtotal"`
	Total           string `json:"total"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreatePaymentIntent prices the raw products array server-side and opens a
// charge for the total. userID, when known, is recorded on the intent so only
// that user can complete it.
func (s *Service) CreatePaymentIntent(ctx context.Context, rawProducts json.RawMessage, userID string) (*IntentResult, error) {
	products, err := ParseProducts(rawProducts)
	if err != nil {
		return nil, err
	}
	quote, err := Price(products)
	if err != nil {
		return nil, err
	}

	metadata := quote.Metadata()
	if userID != "" {
		metadata[MetadataUserID] = userID
	}
	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		Amount:   quote.Amount,
		Currency: s.currency,
		Metadata: metadata,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Payment intent creation failed")
		return nil, err
	}
	logger.Info().Str("payment_intent", intent.ID).Int64("amount", quote.Amount).Msg("PaymentIntent created")

	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		Subtotal:        quote.SubtotalString(),
		Total:           quote.TotalString(),
		PaymentIntentID: intent.ID,
	}, nil
}

// CompleteRequest is sent by the client after the payment widget reports success
type CompleteRequest struct {
	PaymentIntentID string
	ClientID        string
	UserID          string
	Name            string
	Email           string
	PhoneNumber     string
}

// CompleteResult reports the recorded order. Persisted is false when the charge
// succeeded but the order could not be written. Replayed is set when the order
// already existed and nothing was written.
type CompleteResult struct {
	Order     models.Order `json:"order"`
	Persisted bool         `json:"persisted"`
	Replayed  bool         `json:"replayed"`
}

// Complete records a paid order keyed by the payment intent id, merges the
// customer's profile fields, accrues loyalty points and clears the client's cart.
//
// Completing an intent that already has an order returns that order untouched.
// The order is recorded at the amount the gateway charged: when the cart no longer
// matches it, the intent's own totals are used and the cart lines are dropped.
//
// Once the gateway reports success the charge is final: write failures are logged
// and reported through Persisted=false, never rolled back.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*CompleteResult, error) {
	if req.PaymentIntentID == "" || req.UserID == "" {
		return nil, ErrMissingIdentifiers
	}
	intent, err := s.gateway.RetrieveIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if owner := intent.Metadata[MetadataUserID]; owner != req.UserID {
		logger.Warn().Str("payment_intent", intent.ID).Str("user", req.UserID).Str("owner", owner).Msg("Completion refused for foreign payment intent")
		return nil, ErrIntentOwner
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotSucceeded, intent.Status)
	}

	existing, err := s.store.FindOrder(ctx, intent.ID)
	if err != nil {
		return nil, fmt.Errorf("look up order: %w", err)
	}
	if existing != nil {
		logger.Info().Str("payment_intent", intent.ID).Msg("Order already recorded for payment intent")
		return &CompleteResult{Order: *existing, Persisted: true, Replayed: true}, nil
	}

	lines, pending := s.loadClientState(ctx, req.ClientID)
	subtotalStr, totalStr, lines := chargedTotals(intent, lines)

	details := models.UserDetails{
		UID:         req.UserID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	order := models.Order{
		ID:              intent.ID,
		Items:           orderItems(lines),
		Subtotal:        subtotalStr,
		Total:           totalStr,
		PaymentMethodID: intent.PaymentMethodID,
		PaymentStatus:   intent.Status,
		Status:          models.StatusPending,
		UserDetails:     details,
		CreatedAt:       s.now(),
	}

	persisted := true
	if err := s.store.MergeProfile(ctx, req.UserID, details); err != nil {
		persisted = false
		logger.Error().Err(err).Str("user", req.UserID).Msg("Failed to update user details after payment")
	}
	if err := s.store.SavePayment(ctx, &models.PaymentRecord{
		ID:            intent.ID,
		UserID:        req.UserID,
		Subtotal:      subtotalStr,
		Total:         totalStr,
		PaymentStatus: intent.Status,
		CreatedAt:     order.CreatedAt,
	}); err != nil {
		persisted = false
		logger.Error().Err(err).Str("payment_intent", intent.ID).Msg("Failed to save payment record")
	}
	orderSaved := true
	if err := s.store.SaveOrder(ctx, &order); err != nil {
		persisted, orderSaved = false, false
		logger.Error().Err(err).Str("payment_intent", intent.ID).Msg("Payment succeeded, but failed to save order")
	}

	// points were already credited when the pending order was prepared
	if orderSaved && (pending == nil || !pending.PointsApplied) {
		paid, err := decimal.NewFromString(totalStr)
		if err == nil {
			if err := s.store.AddPoints(ctx, req.UserID, loyalty.Earned(paid)); err != nil {
				logger.Warn().Err(err).Str("user", req.UserID).Msg("Failed to accrue loyalty points")
			}
		}
	}

	s.clearClientState(ctx, req.ClientID)

	if persisted && s.feed != nil {
		s.feed.Publish("orders", order)
	}
	return &CompleteResult{Order: order, Persisted: persisted}, nil
}

// chargedTotals returns the subtotal and total to record for a paid intent along
// with the lines that were actually charged. Lines whose total differs from the
// charged amount are discarded.
func chargedTotals(intent *payment.Intent, lines []cart.Line) (string, string, []cart.Line) {
	subtotal := cart.Total(lines)
	if len(lines) > 0 && toMinorUnits(subtotal) == intent.Amount {
		return cart.FormatMoney(subtotal), cart.FormatMoney(subtotal), lines
	}
	if len(lines) > 0 {
		logger.Warn().Str("payment_intent", intent.ID).Int64("charged", intent.Amount).
			Str("cart_total", cart.FormatMoney(subtotal)).Msg("Cart changed after payment intent was created; recording charged totals")
	}

	charged := cart.FormatMoney(decimal.New(intent.Amount, -2))
	subtotalStr, totalStr := intent.Metadata["subtotal"], intent.Metadata["total"]
	if subtotalStr == "" {
		subtotalStr = charged
	}
	if totalStr == "" {
		totalStr = charged
	}
	return subtotalStr, totalStr, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(minorUnitsPerMajorUnit)).Round(0).IntPart()
}

// PrepareRequest carries the pickup details entered before paying
type PrepareRequest struct {
	ClientID    string
	UserID      string
	Name        string
	PhoneNumber string
}

// Prepare redeems the user's loyalty points against the cart total and stores
// the resulting pending order snapshot for the client. The new points balance,
// including what this order earns, is written to the profile immediately.
// Points are redeemed once per pending order: preparing again returns the stored
// snapshot with the contact details updated.
func (s *Service) Prepare(ctx context.Context, req PrepareRequest) (*PendingOrder, *loyalty.Redemption, error) {
	if req.Name == "" || req.PhoneNumber == "" {
		return nil, nil, &ValidationError{Msg: "Please fill in all fields."}
	}
	existing, err := s.state.PendingOrder(ctx, req.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load pending order: %w", err)
	}
	if existing != nil && existing.PointsApplied {
		existing.Name, existing.PhoneNumber = req.Name, req.PhoneNumber
		if existing.Redemption == nil {
			existing.Redemption = &loyalty.Redemption{}
		}
		if err := s.state.SavePendingOrder(ctx, req.ClientID, existing); err != nil {
			return nil, nil, fmt.Errorf("save pending order: %w", err)
		}
		return existing, existing.Redemption, nil
	}

	c, err := s.state.Cart(ctx, req.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, nil, ErrEmptyCart
	}

	subtotal := c.Total()
	points, err := s.store.Points(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load points: %w", err)
	}
	redemption := loyalty.Apply(points, subtotal)
	if err := s.store.SetPoints(ctx, req.UserID, redemption.RemainingPoints); err != nil {
		return nil, nil, fmt.Errorf("update points: %w", err)
	}

	pending := &PendingOrder{
		Name:          req.Name,
		PhoneNumber:   req.PhoneNumber,
		Items:         c.Lines,
		Subtotal:      cart.FormatMoney(subtotal),
		Discount:      cart.FormatMoney(redemption.Discount),
		Total:         cart.FormatMoney(redemption.FinalTotal),
		PointsApplied: true,
		Redemption:    &redemption,
	}
	if err := s.state.SavePendingOrder(ctx, req.ClientID, pending); err != nil {
		return nil, nil, fmt.Errorf("save pending order: %w", err)
	}
	return pending, &redemption, nil
}

// SaveCardDetails stores the brand and last four digits of the card that paid for
// an intent as the user's default card
func (s *Service) SaveCardDetails(ctx context.Context, paymentIntentID, userID string) (*models.CardDetails, error) {
	if paymentIntentID == "" || userID == "" {
		return nil, ErrMissingIdentifiers
	}
	intent, err := s.gateway.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}

	details := &models.CardDetails{
		UserID:          userID,
		PaymentMethodID: intent.PaymentMethodID,
		Brand:           "unknown",
		Last4:           "0000",
		LastUsed:        s.now(),
	}
	if intent.Card != nil {
		if intent.Card.Brand != "" {
			details.Brand = intent.Card.Brand
		}
		if intent.Card.Last4 != "" {
			details.Last4 = intent.Card.Last4
		}
	}
	if err := s.store.SaveCardDetails(ctx, details); err != nil {
		return nil, fmt.Errorf("save card details: %w", err)
	}
	logger.Info().Str("user", userID).Str("last4", details.Last4).Msg("Card details saved")
	return details, nil
}

func (s *Service) loadClientState(ctx context.Context, clientID string) ([]cart.Line, *PendingOrder) {
	if s.state == nil || clientID == "" {
		return nil, nil
	}
	var lines []cart.Line
	c, err := s.state.Cart(ctx, clientID)
	if err != nil {
		logger.Warn().Err(err).Str("client", clientID).Msg("Failed to load cart at checkout")
	} else {
		lines = c.Lines
	}
	pending, err := s.state.PendingOrder(ctx, clientID)
	if err != nil {
		logger.Warn().Err(err).Str("client", clientID).Msg("Failed to load pending order")
	}
	if len(lines) == 0 && pending != nil {
		lines = cart.Normalize(pending.Items)
	}
	return lines, pending
}

func (s *Service) clearClientState(ctx context.Context, clientID string) {
	if s.state == nil || clientID == "" {
		return
	}
	if err := s.state.ClearCart(ctx, clientID); err != nil {
		logger.Warn().Err(err).Str("client", clientID).Msg("Failed to clear cart")
	}
	if err := s.state.ClearPendingOrder(ctx, clientID); err != nil {
		logger.Warn().Err(err).Str("client", clientID).Msg("Failed to clear pending order")
	}
}

func orderItems(lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		name := l.Name
		if name == "" {
			name = "Unknown"
		}
		items = append(items, models.OrderItem{
			Name:     name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Image:    l.Image,
		})
	}
	return items
}
