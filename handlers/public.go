package handlers

import (
	"net/http"
	"strings"

	"restaurant-api/feed"
	"restaurant-api/models"
	"restaurant-api/statemachine"

	"github.com/gin-gonic/gin"
)

// MenuCategory is one storefront section
type MenuCategory struct {
	Category string            `json:"category"`
	Items    []models.MenuItem `json:"items"`
}

func groupByCategory(items []models.MenuItem) []MenuCategory {
	groups := []MenuCategory{}
	index := map[string]int{}
	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "Other"
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, MenuCategory{Category: cat})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// ListMenu returns the catalog grouped by category (public)
func ListMenu(c *gin.Context) {
	items, err := deps.Repo.ListMenu(c.Request.Context(), c.Query("q"))
	if err != nil {
		internalError(c, "Failed to load menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(items),
		"categories": groupByCategory(items),
	})
}

// ListCategories returns the distinct menu categories (public)
func ListCategories(c *gin.Context) {
	categories, err := deps.Repo.Categories(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to load categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetMenuItem returns a single menu item (public)
func GetMenuItem(c *gin.Context) {
	item, err := deps.Repo.GetMenuItem(c.Request.Context(), c.Param("id"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to load menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

type InquiryRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Reason   string `json:"reason" binding:"required"`
	Datetime string `json:"datetime"`
	Message  string `json:"message" binding:"required"`
}

// SubmitInquiry stores a contact-form inquiry with status pending (public)
func SubmitInquiry(c *gin.Context) {
	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inquiry := models.Inquiry{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
		Reason:   req.Reason,
		Datetime: req.Datetime,
		Message:  req.Message,
	}
	if err := deps.Repo.CreateInquiry(c.Request.Context(), &inquiry); err != nil {
		internalError(c, "Failed to submit inquiry", err)
		return
	}
	if deps.Feed != nil {
		deps.Feed.Publish(feed.TopicInquiries, inquiry)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Inquiry submitted", "inquiry": inquiry})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusReady},
		"description":     "Restaurant Order Kitchen Workflow State Machine",
	})
}
