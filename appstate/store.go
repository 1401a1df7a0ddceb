// Package appstate is the per-client application state that a browser would keep
// in local storage: the cart, a pending order snapshot, the photo-upload
// permission flag and the theme preference.
package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"restaurant-api/cart"
	"restaurant-api/checkout"
)

const (
	keyCart            = "cart"
	keyPendingOrder    = "pendingOrder"
	keyPhotoPermission = "photoUploadPermission"
	keyTheme           = "theme"

	DefaultTheme   = "default"
	maxThemeLength = 256
)

var ErrInvalidTheme = errors.New("theme must be a non-empty string of at most 256 characters")

// Store gives typed access to client state held in a Storage
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

func clientKey(clientID, key string) string {
	return clientID + ":" + key
}

func (s *Store) getJSON(ctx context.Context, clientID, key string, v interface{}) (bool, error) {
	raw, err := s.storage.Get(ctx, clientKey(clientID, key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, clientID, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, clientKey(clientID, key), raw)
}

// Cart loads the client's cart; quantities outside [1,5] are clamped
func (s *Store) Cart(ctx context.Context, clientID string) (*cart.Cart, error) {
	var lines []cart.Line
	if _, err := s.getJSON(ctx, clientID, keyCart, &lines); err != nil {
		return nil, err
	}
	return cart.New(lines), nil
}

func (s *Store) SaveCart(ctx context.Context, clientID string, c *cart.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return s.setJSON(ctx, clientID, keyCart, lines)
}

func (s *Store) ClearCart(ctx context.Context, clientID string) error {
	return s.storage.Delete(ctx, clientKey(clientID, keyCart))
}

// PendingOrder returns nil when none is stored
func (s *Store) PendingOrder(ctx context.Context, clientID string) (*checkout.PendingOrder, error) {
	var p checkout.PendingOrder
	ok, err := s.getJSON(ctx, clientID, keyPendingOrder, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SavePendingOrder(ctx context.Context, clientID string, order *checkout.PendingOrder) error {
	return s.setJSON(ctx, clientID, keyPendingOrder, order)
}

func (s *Store) ClearPendingOrder(ctx context.Context, clientID string) error {
	return s.storage.Delete(ctx, clientKey(clientID, keyPendingOrder))
}

// PhotoUploadAllowed reports the one-time photo upload permission; false if never set
func (s *Store) PhotoUploadAllowed(ctx context.Context, clientID string) (bool, error) {
	raw, err := s.storage.Get(ctx, clientKey(clientID, keyPhotoPermission))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	allowed, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, nil
	}
	return allowed, nil
}

func (s *Store) SetPhotoUploadAllowed(ctx context.Context, clientID string, allowed bool) error {
	return s.storage.Set(ctx, clientKey(clientID, keyPhotoPermission), []byte(strconv.FormatBool(allowed)))
}

// Theme returns the saved theme, or DefaultTheme
func (s *Store) Theme(ctx context.Context, clientID string) (string, error) {
	raw, err := s.storage.Get(ctx, clientKey(clientID, keyTheme))
	if errors.Is(err, ErrNotFound) {
		return DefaultTheme, nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SetTheme accepts "default", "dark", a CSS colour or a linear-gradient(...) value
func (s *Store) SetTheme(ctx context.Context, clientID, theme string) error {
	if theme == "" || len(theme) > maxThemeLength {
		return ErrInvalidTheme
	}
	return s.storage.Set(ctx, clientKey(clientID, keyTheme), []byte(theme))
}
