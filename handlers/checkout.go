package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-api/checkout"
	"restaurant-api/config"
	"restaurant-api/middleware"
	"restaurant-api/models"
	"restaurant-api/payment"

	"github.com/gin-gonic/gin"
)

// BeginCheckout gates checkout: empty carts are rejected and guests are sent to
// sign in with their cart carried along
func BeginCheckout(c *gin.Context) {
	ct := loadCart(c)
	if ct == nil {
		return
	}
	redirect, err := checkout.Begin(ct, middleware.GetUserID(c))
	if errors.Is(err, checkout.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty!"})
		return
	}
	if redirect != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":       "Please sign in to continue to checkout",
			"redirect":    redirect.To,
			"pendingCart": redirect.PendingCart,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Ready for payment",
		"cart":    cartBody(ct),
	})
}

type PrepareCheckoutRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// PrepareCheckout applies loyalty points and stores the pending order
func PrepareCheckout(c *gin.Context) {
	var req PrepareCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pending, redemption, err := deps.Checkout.Prepare(c.Request.Context(), checkout.PrepareRequest{
		ClientID:    middleware.ClientID(c),
		UserID:      middleware.GetUserID(c),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	var ve *checkout.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty!"})
		return
	case err != nil:
		internalError(c, "Failed to prepare order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pendingOrder":    pending,
		"discount":        pending.Discount,
		"earnedPoints":    redemption.EarnedPoints.StringFixed(2),
		"remainingPoints": redemption.RemainingPoints.StringFixed(2),
	})
}

type CompleteCheckoutRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
}

// CompleteCheckout records the order once the payment widget reports success
func CompleteCheckout(c *gin.Context) {
	var req CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)

	// fill contact fields the client left out from the profile
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err == nil {
		if req.Name == "" {
			req.Name = user.Name
		}
		if req.Email == "" {
			req.Email = user.Email
		}
		if req.PhoneNumber == "" {
			req.PhoneNumber = user.PhoneNumber
		}
	}

	res, err := deps.Checkout.Complete(c.Request.Context(), checkout.CompleteRequest{
		PaymentIntentID: req.PaymentIntentID,
		ClientID:        middleware.ClientID(c),
		UserID:          userID,
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
	})
	switch {
	case errors.Is(err, payment.ErrIntentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment intent not found"})
		return
	case errors.Is(err, checkout.ErrIntentOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Payment intent belongs to another account"})
		return
	case errors.Is(err, checkout.ErrPaymentNotSucceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment failed", "details": err.Error()})
		return
	case err != nil:
		internalError(c, "Failed to complete order", err)
		return
	}
	status, message := http.StatusCreated, "Payment successful! Your order has been placed."
	switch {
	case res.Replayed:
		status, message = http.StatusOK, "Your order has already been placed."
	case !res.Persisted:
		status, message = http.StatusAccepted, "Payment successful, but we could not save your order. Please contact the restaurant."
	}
	c.JSON(status, gin.H{
		"message":   message,
		"order":     res.Order,
		"persisted": res.Persisted,
	})
}

// CreatePaymentIntent prices the posted products server-side and opens a charge
// owned by the signed-in caller
func CreatePaymentIntent(c *gin.Context) {
	var req struct {
		Products json.RawMessage `json:"products"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": checkout.MsgInvalidProducts})
		return
	}

	res, err := deps.Checkout.CreatePaymentIntent(c.Request.Context(), req.Products, middleware.GetUserID(c))
	var ve *checkout.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create payment intent",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SaveCardDetails stores the brand and last four digits of the paying card
func SaveCardDetails(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId"`
		UserID          string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	_, err := deps.Checkout.SaveCardDetails(c.Request.Context(), req.PaymentIntentID, req.UserID)
	switch {
	case errors.Is(err, checkout.ErrMissingIdentifiers):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing paymentIntentId or userId"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save card details",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
