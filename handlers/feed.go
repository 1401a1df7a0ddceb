package handlers

import (
	"net/http"
	"strings"

	"restaurant-api/feed"
	"restaurant-api/middleware"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

const notificationsPrefix = "notifications:"

// canSubscribe decides who may follow a topic: the menu is public, the kitchen
// and inquiry feeds are admin-only and a notification feed belongs to one user
func canSubscribe(c *gin.Context, topic string) (bool, int) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	switch {
	case topic == feed.TopicItems:
		return true, 0
	case topic == feed.TopicOrders, topic == feed.TopicInquiries:
		if userID == "" {
			return false, http.StatusUnauthorized
		}
		return role == models.RoleAdmin, http.StatusForbidden
	case strings.HasPrefix(topic, notificationsPrefix):
		if userID == "" {
			return false, http.StatusUnauthorized
		}
		return topic == feed.NotificationsTopic(userID), http.StatusForbidden
	default:
		return false, http.StatusNotFound
	}
}

// StreamFeed upgrades to a websocket that pushes every change on :topic
func StreamFeed(c *gin.Context) {
	topic := c.Param("topic")
	ok, status := canSubscribe(c, topic)
	if !ok {
		msg := "Access denied for this feed"
		switch status {
		case http.StatusUnauthorized:
			msg = "Authorization header required"
		case http.StatusNotFound:
			msg = "Unknown feed topic"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	deps.Feed.Stream(c, topic)
}
