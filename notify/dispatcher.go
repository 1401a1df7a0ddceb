package notify

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"restaurant-api/events"
	"restaurant-api/feed"
	"restaurant-api/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "notify").Logger()

// NotificationStore persists in-app notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Publisher pushes live updates to feed subscribers
type Publisher interface {
	Publish(topic string, payload interface{})
}

// StatusMessage is the in-app notification text for a status change
func StatusMessage(orderID string, status models.OrderStatus) string {
	if status == models.StatusPreparing {
		return fmt.Sprintf("Your order #%s is now being prepared.", orderID)
	}
	return fmt.Sprintf("Your order #%s is ready for pickup!", orderID)
}

func statusEmailMessage(orderID string, status models.OrderStatus) string {
	if status == models.StatusPreparing {
		return fmt.Sprintf("Your order #%s is now being prepared. We'll notify you once it's ready for pickup.", orderID)
	}
	return fmt.Sprintf("Your order #%s is now ready for pickup!", orderID)
}

// Dispatcher runs the side effects of order and inquiry changes. Every side
// effect is best-effort: failures are logged and never undo the change itself.
type Dispatcher struct {
	store  NotificationStore
	feed   Publisher
	mailer Mailer
	events events.Publisher
	now    func() time.Time
}

func NewDispatcher(store NotificationStore, feed Publisher, mailer Mailer, publisher events.Publisher) *Dispatcher {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Dispatcher{store: store, feed: feed, mailer: mailer, events: publisher, now: time.Now}
}

// OrderStatusChanged notifies the order's owner that it moved from previous to
// order.Status
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus) {
	// side effects outlive the admin's request
	ctx = context.WithoutCancel(ctx)
	now := d.now()
	userID := order.UserDetails.UID

	if d.feed != nil {
		d.feed.Publish(feed.TopicOrders, order)
	}

	if userID != "" && d.store != nil {
		n := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			OrderID:   order.ID,
			Message:   StatusMessage(order.ID, order.Status),
			Timestamp: now,
		}
		if err := d.store.CreateNotification(ctx, n); err != nil {
			logger.Error().Err(err).Str("order", order.ID).Msg("❌ Failed to send notification")
		} else if d.feed != nil {
			d.feed.Publish(feed.NotificationsTopic(userID), n)
		}
	}

	if order.UserDetails.Email == "" {
		logger.Warn().Str("order", order.ID).Msg("⚠️ No email found for order")
	} else if d.mailer != nil {
		if err := d.mailer.Send(ctx, OrderStatusEmail(order, now)); err != nil {
			logger.Error().Err(err).Str("order", order.ID).Msg("❌ Failed to send email")
		} else {
			logger.Info().Str("order", order.ID).Str("status", string(order.Status)).Msg("✅ Status email sent")
		}
	}

	err := d.events.PublishOrderStatus(ctx, events.OrderStatusEvent{
		OrderID:        order.ID,
		UserID:         userID,
		PreviousStatus: previous,
		Status:         order.Status,
		Total:          order.Total,
		OccurredAt:     now,
	})
	if err != nil {
		logger.Error().Err(err).Str("order", order.ID).Msg("Failed to publish order status event")
	}
}

// OrderStatusEmail builds the status email for an order
func OrderStatusEmail(order models.Order, now time.Time) Email {
	var items strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&items,
			`<li style="display:flex;align-items:center;margin-bottom:10px;"><img src="%s" alt="%s" style="width:60px;height:60px;border-radius:5px;object-fit:cover;margin-right:10px;" /><span style="font-size:14px;color:#0A5C36;">%s × %d</span></li>`,
			html.EscapeString(it.Image), html.EscapeString(it.Name), html.EscapeString(it.Name), it.Quantity)
	}
	return Email{
		Template: TemplateOrderStatus,
		To:       order.UserDetails.Email,
		Params: map[string]interface{}{
			"customer_name": order.UserDetails.Name,
			"order_id":      order.ID,
			"order_items":   items.String(),
			"order_total":   order.Total,
			"order_status":  string(order.Status),
			"order_message": statusEmailMessage(order.ID, order.Status),
			"year":          now.Year(),
		},
	}
}

// InquiryReply emails the admin's answer to the person who sent the inquiry.
// Unlike status emails the error is returned: the inquiry only counts as
// answered once the email went out.
func (d *Dispatcher) InquiryReply(ctx context.Context, inquiry models.Inquiry, subject, message string) error {
	if d.mailer == nil {
		return ErrMailerDisabled
	}
	return d.mailer.Send(ctx, Email{
		Template: TemplateInquiryReply,
		To:       inquiry.Email,
		Params: map[string]interface{}{
			"to_name": inquiry.Name,
			"subject": subject,
			"message": message,
		},
	})
}
