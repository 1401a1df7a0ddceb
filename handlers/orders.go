package handlers

import (
	"net/http"

	"restaurant-api/middleware"

	"github.com/gin-gonic/gin"
)

// GetMyOrders returns the authenticated user's order history, newest first
func GetMyOrders(c *gin.Context) {
	orders, err := deps.Repo.OrdersForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		internalError(c, "Failed to load orders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetMyNotifications returns the order status messages sent to the user
func GetMyNotifications(c *gin.Context) {
	notifications, err := deps.Repo.NotificationsForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		internalError(c, "Failed to load notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(notifications), "notifications": notifications})
}
