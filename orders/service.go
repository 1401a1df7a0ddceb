// Package orders runs the admin side of the order workflow
package orders

import (
	"context"
	"os"

	"restaurant-api/models"
	"restaurant-api/statemachine"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "orders").Logger()

// Store is the order persistence the service needs
type Store interface {
	ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	AdvanceOrder(ctx context.Context, id string) (*models.Order, models.OrderStatus, error)
}

// Notifier fires the side effects of a committed status change
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus)
}

type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Board returns all orders split into the kitchen's current and previous lists
func (s *Service) Board(ctx context.Context) (statemachine.Board, error) {
	all, err := s.store.ListOrders(ctx, "")
	if err != nil {
		return statemachine.Board{}, err
	}
	return statemachine.Split(all), nil
}

// Advanced is a committed status change and the kitchen board after it
type Advanced struct {
	Order    models.Order
	Previous models.OrderStatus
	Board    statemachine.Board
}

// Advance commits the next status, then notifies the customer. Notification
// failures never roll the status back. The board loaded before the commit is
// moved along with the order; it is reloaded if another admin got there first.
func (s *Service) Advance(ctx context.Context, id string) (*Advanced, error) {
	board, err := s.Board(ctx)
	if err != nil {
		return nil, err
	}
	order, previous, err := s.store.AdvanceOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, *order, previous)
	}

	moved, err := board.Advance(id)
	if err != nil || moved.Status != order.Status {
		if board, err = s.Board(ctx); err != nil {
			logger.Warn().Err(err).Str("order", id).Msg("Failed to reload order board")
		}
	}
	return &Advanced{Order: *order, Previous: previous, Board: board}, nil
}
