package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-api/analytics"
	"restaurant-api/config"
	"restaurant-api/feed"
	"restaurant-api/models"
	"restaurant-api/notify"
	"restaurant-api/repository"
	"restaurant-api/statemachine"

	"github.com/gin-gonic/gin"
)

// analyticsSlack widens the database query around the report window so that
// timezone edges are left to analytics.Aggregate
const analyticsSlack = 24 * time.Hour

// AdminGetOrders returns the kitchen board: current and previous orders
func AdminGetOrders(c *gin.Context) {
	board, err := deps.Orders.Board(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to load orders", err)
		return
	}

	// Admin dashboard: aggregate by status
	summary := map[string]int{}
	for _, o := range board.Current {
		summary[string(o.Status)]++
	}
	summary[string(models.StatusReady)] = len(board.Previous)

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(board.Current) + len(board.Previous),
		"current":       board.Current,
		"previous":      board.Previous,
	})
}

// AdminAdvanceOrder moves an order one step: Pending → Preparing → Ready
func AdminAdvanceOrder(c *gin.Context) {
	orderID := c.Param("id")
	res, err := deps.Orders.Advance(c.Request.Context(), orderID)
	switch {
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case errors.Is(err, statemachine.ErrTerminal):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    models.StatusReady,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(models.StatusReady),
		})
		return
	case errors.Is(err, repository.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": "Order was updated by someone else, reload and retry"})
		return
	case err != nil:
		internalError(c, "Failed to update order status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("Order status updated: %s → %s", res.Previous, res.Order.Status),
		"order_id":        res.Order.ID,
		"previous_status": res.Previous,
		"new_status":      res.Order.Status,
		"order":           res.Order,
		"current":         res.Board.Current,
		"previous":        res.Board.Previous,
	})
}

// ── Menu management ──────────────────────────────────────────────

type MenuItemRequest struct {
	Name        string           `json:"name" binding:"required"`
	Price       float64          `json:"price" binding:"required,gt=0"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Ingredients []string         `json:"ingredients"`
	Nutrition   models.Nutrition `json:"nutrition"`
	Image       string           `json:"image"`
}

func (r MenuItemRequest) toModel(id string) models.MenuItem {
	return models.MenuItem{
		ID:          id,
		Name:        strings.TrimSpace(r.Name),
		Price:       r.Price,
		Description: r.Description,
		Category:    strings.TrimSpace(r.Category),
		Ingredients: r.Ingredients,
		Nutrition:   r.Nutrition,
		Image:       r.Image,
	}
}

// AdminCreateMenuItem adds an item to the catalog
func AdminCreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := req.toModel("")
	if err := deps.Repo.CreateMenuItem(c.Request.Context(), &item); err != nil {
		internalError(c, "Failed to add menu item", err)
		return
	}
	publishItem(c, "created", item)
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// AdminUpdateMenuItem replaces the editable fields of an item
func AdminUpdateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := req.toModel(c.Param("id"))
	err := deps.Repo.UpdateMenuItem(c.Request.Context(), &item)
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to update menu item", err)
		return
	}
	publishItem(c, "updated", item)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// AdminDeleteMenuItem removes an item from the catalog. Past orders keep their
// own item snapshots.
func AdminDeleteMenuItem(c *gin.Context) {
	id := c.Param("id")
	err := deps.Repo.DeleteMenuItem(c.Request.Context(), id)
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to delete menu item", err)
		return
	}
	publishItem(c, "deleted", models.MenuItem{ID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

func publishItem(c *gin.Context, action string, item models.MenuItem) {
	if deps.Feed == nil {
		return
	}
	deps.Feed.Publish(feed.TopicItems, gin.H{"action": action, "item": item})
}

// ── Analytics ────────────────────────────────────────────────────

func buildReport(c *gin.Context) (analytics.Report, bool) {
	tf, err := analytics.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analytics.Report{}, false
	}
	opts := analytics.Options{}
	if top := c.Query("top"); top != "" {
		n, err := strconv.Atoi(top)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a non-negative integer"})
			return analytics.Report{}, false
		}
		opts.TopN = n
	}

	now := time.Now()
	start, end := analytics.Window(tf, now)
	orders, err := deps.Repo.OrdersBetween(c.Request.Context(), start.Add(-analyticsSlack), end.Add(analyticsSlack))
	if err != nil {
		internalError(c, "Failed to load orders", err)
		return analytics.Report{}, false
	}
	return analytics.Aggregate(orders, tf, now, opts), true
}

// AdminAnalytics returns the sales dashboard for ?timeframe=daily|weekly|monthly
func AdminAnalytics(c *gin.Context) {
	report, ok := buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminExportAnalytics returns the same report as an Excel workbook. The file is
// built in memory so a failure can still be reported as JSON.
func AdminExportAnalytics(c *gin.Context) {
	report, ok := buildReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := analytics.WriteXLSX(report, &buf); err != nil {
		internalError(c, "Failed to export report", err)
		return
	}
	filename := fmt.Sprintf("sales-%s-%s.xlsx", report.Timeframe, report.Start.Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ── Users ────────────────────────────────────────────────────────

// AdminGetUsers returns all accounts split into customers and admins
func AdminGetUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("created_at desc").Find(&users).Error; err != nil {
		internalError(c, "Failed to load users", err)
		return
	}
	customers := []models.User{}
	admins := []models.User{}
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins = append(admins, u)
		} else {
			customers = append(customers, u)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(users),
		"users":  customers,
		"admins": admins,
	})
}

type CreateUserRequest struct {
	RegisterRequest
	Role models.UserRole `json:"role"`
}

// AdminCreateUser creates an account with the given role (user by default)
func AdminCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be user or admin"})
		return
	}

	user, status, msg := createUser(req.Name, req.Email, req.Password, req.PhoneNumber, role)
	if user == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": userBody(user)})
}

// ── Inquiries ────────────────────────────────────────────────────

// AdminGetInquiries lists pending inquiries and the replied ones
func AdminGetInquiries(c *gin.Context) {
	ctx := c.Request.Context()
	pending, err := deps.Repo.PendingInquiries(ctx)
	if err != nil {
		internalError(c, "Failed to load inquiries", err)
		return
	}
	responded, err := deps.Repo.RespondedInquiries(ctx)
	if err != nil {
		internalError(c, "Failed to load inquiries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending, "responded": responded})
}

type InquiryReplyRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// AdminReplyInquiry emails the reply and, once sent, moves the inquiry to the
// responded list
func AdminReplyInquiry(c *gin.Context) {
	var req InquiryReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	inquiry, err := deps.Repo.GetInquiry(ctx, c.Param("id"))
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to load inquiry", err)
		return
	}

	if err := deps.Notifier.InquiryReply(ctx, *inquiry, req.Subject, req.Message); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, notify.ErrMailerDisabled) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "Failed to send email", "details": err.Error()})
		return
	}

	responded, err := deps.Repo.RespondInquiry(ctx, inquiry.ID, req.Subject, req.Message)
	if err != nil {
		internalError(c, "Reply sent but the inquiry could not be updated", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reply sent", "inquiry": responded})
}
