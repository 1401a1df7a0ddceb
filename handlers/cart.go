package handlers

import (
	"errors"
	"net/http"

	"restaurant-api/cart"
	"restaurant-api/middleware"

	"github.com/gin-gonic/gin"
)

func cartBody(ct *cart.Cart) gin.H {
	lines := ct.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return gin.H{
		"items":     lines,
		"itemCount": ct.ItemCount(),
		"total":     cart.FormatMoney(ct.Total()),
	}
}

// respondCartError maps cart rule violations to user-visible responses
func respondCartError(c *gin.Context, ct *cart.Cart, err error) {
	switch {
	case errors.Is(err, cart.ErrQuantityLimit):
		body := cartBody(ct)
		body["error"] = "Maximum quantity per item is 5"
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, cart.ErrConfirmRemoval):
		body := cartBody(ct)
		body["error"] = "Do you want to remove this item from your cart?"
		body["confirmRemoval"] = true
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, cart.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item is not in your cart"})
	default:
		internalError(c, "Failed to update cart", err)
	}
}

// loadCart fetches the caller's cart or writes a 500 and returns nil
func loadCart(c *gin.Context) *cart.Cart {
	ct, err := deps.State.Cart(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		internalError(c, "Failed to load cart", err)
		return nil
	}
	return ct
}

func saveCart(c *gin.Context, ct *cart.Cart) bool {
	if err := deps.State.SaveCart(c.Request.Context(), middleware.ClientID(c), ct); err != nil {
		internalError(c, "Failed to save cart", err)
		return false
	}
	return true
}

// GetCart returns the caller's cart with its total
func GetCart(c *gin.Context) {
	ct := loadCart(c)
	if ct == nil {
		return
	}
	c.JSON(http.StatusOK, cartBody(ct))
}

type AddCartItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// AddCartItem adds one unit of a menu item
func AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := deps.Repo.GetMenuItem(c.Request.Context(), req.ItemID)
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to load menu item", err)
		return
	}

	ct := loadCart(c)
	if ct == nil {
		return
	}
	if _, err := ct.Add(*item); err != nil {
		respondCartError(c, ct, err)
		return
	}
	if !saveCart(c, ct) {
		return
	}
	c.JSON(http.StatusOK, cartBody(ct))
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets the quantity of a line within [1,5]
func UpdateCartItem(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mutateCart(c, func(ct *cart.Cart) error {
		_, err := ct.SetQuantity(c.Param("itemId"), req.Quantity)
		return err
	})
}

// IncrementCartItem adds one unit to a line
func IncrementCartItem(c *gin.Context) {
	mutateCart(c, func(ct *cart.Cart) error {
		_, err := ct.Increment(c.Param("itemId"))
		return err
	})
}

// DecrementCartItem removes one unit; at quantity 1 the client must confirm
// removal through DELETE instead
func DecrementCartItem(c *gin.Context) {
	mutateCart(c, func(ct *cart.Cart) error {
		_, err := ct.Decrement(c.Param("itemId"))
		return err
	})
}

// RemoveCartItem deletes a line after the customer confirmed
func RemoveCartItem(c *gin.Context) {
	mutateCart(c, func(ct *cart.Cart) error {
		return ct.Remove(c.Param("itemId"))
	})
}

func mutateCart(c *gin.Context, fn func(*cart.Cart) error) {
	ct := loadCart(c)
	if ct == nil {
		return
	}
	if err := fn(ct); err != nil {
		respondCartError(c, ct, err)
		return
	}
	if !saveCart(c, ct) {
		return
	}
	c.JSON(http.StatusOK, cartBody(ct))
}

// ── Preferences ──────────────────────────────────────────────────

// GetTheme returns the caller's saved theme
func GetTheme(c *gin.Context) {
	theme, err := deps.State.Theme(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		internalError(c, "Failed to load theme", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// SetTheme saves "default", "dark", a colour or a gradient
func SetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := deps.State.SetTheme(c.Request.Context(), middleware.ClientID(c), req.Theme); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}

// GetPhotoPermission reports whether the caller granted photo upload access
func GetPhotoPermission(c *gin.Context) {
	allowed, err := deps.State.PhotoUploadAllowed(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		internalError(c, "Failed to load photo permission", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

// SetPhotoPermission records the one-time photo upload permission answer
func SetPhotoPermission(c *gin.Context) {
	var req struct {
		Allowed *bool `json:"allowed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := deps.State.SetPhotoUploadAllowed(c.Request.Context(), middleware.ClientID(c), *req.Allowed); err != nil {
		internalError(c, "Failed to save photo permission", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": *req.Allowed})
}
