// Package repository is the GORM-backed persistence for orders, payments,
// profiles, notifications, inquiries and the menu.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-api/models"
	"restaurant-api/statemachine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ── Checkout ──────────────────────────────────────────────────────

// SaveOrder inserts the order with its item snapshots
func (r *Repository) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindOrder is GetOrder for callers that treat a missing order as (nil, nil)
func (r *Repository) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := r.GetOrder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return order, err
}

// SavePayment upserts the payment record keyed by intent id
func (r *Repository) SavePayment(ctx context.Context, record *models.PaymentRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// MergeProfile copies the non-empty contact fields onto the user
func (r *Repository) MergeProfile(ctx context.Context, userID string, details models.UserDetails) error {
	updates := map[string]interface{}{}
	if details.Name != "" {
		updates["name"] = details.Name
	}
	if details.Email != "" {
		updates["email"] = details.Email
	}
	if details.PhoneNumber != "" {
		updates["phone_number"] = details.PhoneNumber
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) AddPoints(ctx context.Context, userID string, points decimal.Decimal) error {
	f, _ := points.Float64()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", f))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Points(ctx context.Context, userID string) (decimal.Decimal, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("id", "points").First(&user, "id = ?", userID).Error; err != nil {
		return decimal.Zero, notFound(err)
	}
	return decimal.NewFromFloat(user.Points), nil
}

func (r *Repository) SetPoints(ctx context.Context, userID string, points decimal.Decimal) error {
	f, _ := points.Float64()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumn("points", f)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveCardDetails replaces the user's default card
func (r *Repository) SaveCardDetails(ctx context.Context, details *models.CardDetails) error {
	return r.db.WithContext(ctx).Save(details).Error
}

// ── Orders ────────────────────────────────────────────────────────

// ListOrders returns every order, newest first. status filters when non-empty.
func (r *Repository) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).Preload("Items")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *Repository) OrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_uid = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// OrdersBetween returns orders created inside [start, end]
func (r *Repository) OrdersBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

func (r *Repository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// ErrConcurrentUpdate is returned when the order changed status between read and write
var ErrConcurrentUpdate = errors.New("order status changed concurrently")

// AdvanceOrder moves an order one step along the kitchen workflow and returns
// it together with the status it had before. The write only applies if the
// status is still the one that was read.
func (r *Repository) AdvanceOrder(ctx context.Context, id string) (*models.Order, models.OrderStatus, error) {
	var (
		order    models.Order
		previous models.OrderStatus
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		next, err := statemachine.Advance(order.Status)
		if err != nil {
			return err
		}
		previous = order.Status
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, previous).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &order, previous, nil
}

// ── Notifications ─────────────────────────────────────────────────

func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repository) NotificationsForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("timestamp desc").
		Find(&notifications).Error
	return notifications, err
}

// ── Inquiries ─────────────────────────────────────────────────────

func (r *Repository) CreateInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	inquiry.Status = models.InquiryPending
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *Repository) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.WithContext(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inquiry, nil
}

func (r *Repository) PendingInquiries(ctx context.Context) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&inquiries).Error
	return inquiries, err
}

func (r *Repository) RespondedInquiries(ctx context.Context) ([]models.RespondedInquiry, error) {
	var responded []models.RespondedInquiry
	err := r.db.WithContext(ctx).Order("replied_at desc").Find(&responded).Error
	return responded, err
}

// RespondInquiry records the reply and removes the inquiry from the pending
// list in one transaction
func (r *Repository) RespondInquiry(ctx context.Context, id, subject, message string) (*models.RespondedInquiry, error) {
	var responded models.RespondedInquiry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry models.Inquiry
		if err := tx.First(&inquiry, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		responded = models.RespondedInquiry{
			ID:           inquiry.ID,
			Name:         inquiry.Name,
			Email:        inquiry.Email,
			Phone:        inquiry.Phone,
			Reason:       inquiry.Reason,
			Datetime:     inquiry.Datetime,
			Message:      inquiry.Message,
			Status:       "responded",
			CreatedAt:    inquiry.CreatedAt,
			ReplySubject: subject,
			ReplyMessage: message,
			RepliedAt:    time.Now(),
		}
		if err := tx.Create(&responded).Error; err != nil {
			return fmt.Errorf("record reply: %w", err)
		}
		return tx.Delete(&inquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &responded, nil
}

// ── Menu ──────────────────────────────────────────────────────────

// ListMenu returns menu items ordered by category then name. q filters by a
// case-insensitive substring of the name, description or category.
func (r *Repository) ListMenu(ctx context.Context, q string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := r.db.WithContext(ctx)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	err := query.Order("category asc, name asc").Find(&items).Error
	return items, err
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("category <> ''").
		Distinct().
		Order("category asc").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *Repository) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *Repository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateMenuItem overwrites every editable field of an existing item
func (r *Repository) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	res := r.db.WithContext(ctx).Model(&models.MenuItem{ID: item.ID}).
		Select("name", "price", "description", "category", "ingredients",
			"nutrition_calories", "nutrition_fat", "nutrition_protein", "image").
		Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteMenuItem(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
