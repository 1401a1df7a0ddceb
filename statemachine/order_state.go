package statemachine

import (
	"errors"

	"restaurant-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

// validTransitions is the authoritative state machine definition.
// Only the admin console moves orders, and only forwards.
var validTransitions = []Transition{
	// Kitchen starts working on a paid order
	{From: models.StatusPending, To: models.StatusPreparing, Actor: "admin"},
	// Kitchen marks order ready for pickup
	{From: models.StatusPreparing, To: models.StatusReady, Actor: "admin"},
}

// nextStatus is the fixed lookup used by the advance button
var nextStatus = map[models.OrderStatus]models.OrderStatus{
	models.StatusPending: models.StatusPreparing,
}

// ErrTerminal is returned when advancing an order that is already Ready
var ErrTerminal = errors.New("order is already in its terminal state")

// Next returns the status an order moves to on one admin action.
// Pending goes to Preparing; anything else goes to Ready.
func Next(current models.OrderStatus) models.OrderStatus {
	if next, ok := nextStatus[current]; ok {
		return next
	}
	return models.StatusReady
}

// Advance is Next guarded against regressing or re-entering the terminal state
func Advance(current models.OrderStatus) (models.OrderStatus, error) {
	if IsTerminal(current) {
		return current, ErrTerminal
	}
	// unknown legacy statuses land on Ready, matching the lookup table
	return Next(current), nil
}

// IsTerminal reports whether no further transitions exist
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusReady
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
