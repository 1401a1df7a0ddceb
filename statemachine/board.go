package statemachine

import (
	"fmt"

	"restaurant-api/models"
)

// Board is the admin order view: orders still in the kitchen and finished ones
type Board struct {
	Current  []models.Order `json:"current"`
	Previous []models.Order `json:"previous"`
}

// Split partitions orders into the current and previous lists, keeping input order
func Split(orders []models.Order) Board {
	b := Board{Current: []models.Order{}, Previous: []models.Order{}}
	for _, o := range orders {
		if IsTerminal(o.Status) {
			b.Previous = append(b.Previous, o)
		} else {
			b.Current = append(b.Current, o)
		}
	}
	return b
}

// Advance moves the order with the given id one step forward. An order reaching
// Ready leaves Current and is appended to Previous. The updated order is returned.
func (b *Board) Advance(orderID string) (models.Order, error) {
	for i, o := range b.Current {
		if o.ID != orderID {
			continue
		}
		next, err := Advance(o.Status)
		if err != nil {
			return o, err
		}
		o.Status = next
		if IsTerminal(next) {
			b.Current = append(b.Current[:i:i], b.Current[i+1:]...)
			b.Previous = append(b.Previous, o)
		} else {
			b.Current[i] = o
		}
		return o, nil
	}
	for _, o := range b.Previous {
		if o.ID == orderID {
			return o, ErrTerminal
		}
	}
	return models.Order{}, fmt.Errorf("order %s not on board", orderID)
}
