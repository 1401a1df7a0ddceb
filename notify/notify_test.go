package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-api/events"
	"restaurant-api/feed"
	"restaurant-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNotifications struct {
	saved []models.Notification
	err   error
}

func (m *memNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *n)
	return nil
}

type topicRecorder struct {
	topics []string
}

func (r *topicRecorder) Publish(topic string, _ interface{}) {
	r.topics = append(r.topics, topic)
}

func sampleOrder(status models.OrderStatus) models.Order {
	return models.Order{
		ID:     "pi_42",
		Status: status,
		Total:  "34.97",
		Items:  []models.OrderItem{{Name: "Momo <special>", Quantity: 2, Image: "momo.jpg"}},
		UserDetails: models.UserDetails{
			UID:   "u1",
			Name:  "Asha",
			Email: "asha@example.com",
		},
	}
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Your order #pi_42 is now being prepared.", StatusMessage("pi_42", models.StatusPreparing))
	assert.Equal(t, "Your order #pi_42 is ready for pickup!", StatusMessage("pi_42", models.StatusReady))
}

func TestOrderStatusChangedRunsEverySideEffect(t *testing.T) {
	store := &memNotifications{}
	topics := &topicRecorder{}
	mailer := &RecordingMailer{}
	pub := &events.RecordingPublisher{}
	d := NewDispatcher(store, topics, mailer, pub)

	d.OrderStatusChanged(context.Background(), sampleOrder(models.StatusPreparing), models.StatusPending)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "u1", store.saved[0].UserID)
	assert.Equal(t, "Your order #pi_42 is now being prepared.", store.saved[0].Message)
	assert.Equal(t, []string{feed.TopicOrders, feed.NotificationsTopic("u1")}, topics.topics)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, TemplateOrderStatus, sent[0].Template)
	assert.Equal(t, "asha@example.com", sent[0].To)
	assert.Equal(t, "Preparing", sent[0].Params["order_status"])
	assert.Contains(t, sent[0].Params["order_items"], "Momo &lt;special&gt; × 2")

	evts := pub.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, models.StatusPending, evts[0].PreviousStatus)
	assert.Equal(t, models.StatusPreparing, evts[0].Status)
}

func TestOrderStatusChangedSwallowsFailures(t *testing.T) {
	store := &memNotifications{err: errors.New("db down")}
	mailer := &RecordingMailer{Err: errors.New("smtp down")}
	pub := &events.RecordingPublisher{Err: errors.New("broker down")}
	topics := &topicRecorder{}
	d := NewDispatcher(store, topics, mailer, pub)

	assert.NotPanics(t, func() {
		d.OrderStatusChanged(context.Background(), sampleOrder(models.StatusReady), models.StatusPreparing)
	})
	// the notification was not stored, so nothing goes to the user's topic
	assert.Equal(t, []string{feed.TopicOrders}, topics.topics)
}

func TestOrderStatusChangedWithoutEmail(t *testing.T) {
	mailer := &RecordingMailer{}
	d := NewDispatcher(&memNotifications{}, nil, mailer, nil)
	o := sampleOrder(models.StatusReady)
	o.UserDetails.Email = ""

	d.OrderStatusChanged(context.Background(), o, models.StatusPreparing)
	assert.Empty(t, mailer.Sent())
}

func TestInquiryReply(t *testing.T) {
	mailer := &RecordingMailer{}
	d := NewDispatcher(nil, nil, mailer, nil)
	err := d.InquiryReply(context.Background(), models.Inquiry{Name: "Ravi", Email: "ravi@example.com"}, "Re: booking", "See you Friday")
	require.NoError(t, err)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, TemplateInquiryReply, sent[0].Template)
	assert.Equal(t, "Ravi", sent[0].Params["to_name"])

	mailer.Err = errors.New("quota exceeded")
	assert.Error(t, d.InquiryReply(context.Background(), models.Inquiry{Email: "x@example.com"}, "s", "m"))
}

func TestEmailJSMailer(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	m := NewEmailJSMailer(EmailJSConfig{
		ServiceID: "service_1",
		PublicKey: "public_1",
		Templates: map[string]string{TemplateOrderStatus: "template_status"},
		Endpoint:  srv.URL,
	})
	err := m.Send(context.Background(), OrderStatusEmail(sampleOrder(models.StatusReady), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Equal(t, "service_1", got.ServiceID)
	assert.Equal(t, "template_status", got.TemplateID)
	assert.Equal(t, "public_1", got.UserID)
	assert.Equal(t, "asha@example.com", got.TemplateParams["to_email"])
	assert.Equal(t, "Your order #pi_42 is now ready for pickup!", got.TemplateParams["order_message"])
}

func TestEmailJSMailerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The template ID is invalid"))
	}))
	defer srv.Close()

	disabled := NewEmailJSMailer(EmailJSConfig{})
	assert.ErrorIs(t, disabled.Send(context.Background(), Email{Template: TemplateOrderStatus}), ErrMailerDisabled)

	m := NewEmailJSMailer(EmailJSConfig{
		ServiceID: "service_1",
		PublicKey: "public_1",
		Templates: map[string]string{TemplateInquiryReply: "template_reply"},
		Endpoint:  srv.URL,
	})
	assert.Error(t, m.Send(context.Background(), Email{Template: TemplateOrderStatus}))

	err := m.Send(context.Background(), Email{Template: TemplateInquiryReply, To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "template ID is invalid")
}
