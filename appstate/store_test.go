package appstate

import (
	"context"
	"testing"

	"restaurant-api/cart"
	"restaurant-api/checkout"
	"restaurant-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRoundTripClampsOnLoad(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	store := NewStore(mem)

	// a value written by an older client with an out-of-range quantity
	require.NoError(t, mem.Set(ctx, "client-1:cart", []byte(`[{"id":"a","name":"Momo","price":12.99,"quantity":9}]`)))

	c, err := store.Cart(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, cart.MaxQuantity, c.Lines[0].Quantity)

	_, err = c.Add(models.MenuItem{ID: "b", Name: "Chowmein", Price: 8.99})
	require.NoError(t, err)
	require.NoError(t, store.SaveCart(ctx, "client-1", c))

	reloaded, err := store.Cart(ctx, "client-1")
	require.NoError(t, err)
	assert.Len(t, reloaded.Lines, 2)

	other, err := store.Cart(ctx, "client-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, store.ClearCart(ctx, "client-1"))
	cleared, err := store.Cart(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, cleared.IsEmpty())
}

func TestPendingOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage())

	p, err := store.PendingOrder(ctx, "c")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, store.SavePendingOrder(ctx, "c", &checkout.PendingOrder{Name: "Asha", Total: "20.00"}))
	p, err = store.PendingOrder(ctx, "c")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Asha", p.Name)

	require.NoError(t, store.ClearPendingOrder(ctx, "c"))
	p, err = store.PendingOrder(ctx, "c")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryStorage())

	theme, err := store.Theme(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, theme)

	require.NoError(t, store.SetTheme(ctx, "c", "dark"))
	theme, err = store.Theme(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
	assert.ErrorIs(t, store.SetTheme(ctx, "c", ""), ErrInvalidTheme)

	allowed, err := store.PhotoUploadAllowed(ctx, "c")
	require.NoError(t, err)
	assert.False(t, allowed)
	require.NoError(t, store.SetPhotoUploadAllowed(ctx, "c", true))
	allowed, err = store.PhotoUploadAllowed(ctx, "c")
	require.NoError(t, err)
	assert.True(t, allowed)
}
