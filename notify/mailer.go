// Package notify tells customers about their orders and inquiries: in-app
// notifications, live feed updates, transactional email and order events.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Logical template names, mapped to provider template ids by the mailer
const (
	TemplateOrderStatus  = "order_status"
	TemplateInquiryReply = "inquiry_reply"
)

var ErrMailerDisabled = errors.New("mailer is not configured")

// Email is a templated message; Params fill the template's variables
type Email struct {
	Template string
	To       string
	Params   map[string]interface{}
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

const defaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSConfig holds the account identifiers of an EmailJS service
type EmailJSConfig struct {
	ServiceID   string
	PublicKey   string
	AccessToken string
	// Templates maps logical template names to EmailJS template ids
	Templates map[string]string
	Endpoint  string
}

// EmailJSMailer sends through the EmailJS REST API
type EmailJSMailer struct {
	cfg    EmailJSConfig
	client *http.Client
}

func NewEmailJSMailer(cfg EmailJSConfig) *EmailJSMailer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEmailJSEndpoint
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	return &EmailJSMailer{
		cfg: cfg,
		client: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   15 * time.Second,
		},
	}
}

type emailJSRequest struct {
	ServiceID      string                 `json:"service_id"`
	TemplateID     string                 `json:"template_id"`
	UserID         string                 `json:"user_id"`
	AccessToken    string                 `json:"accessToken,omitempty"`
	TemplateParams map[string]interface{} `json:"template_params"`
}

func (m *EmailJSMailer) Send(ctx context.Context, email Email) error {
	if m.cfg.ServiceID == "" || m.cfg.PublicKey == "" {
		return ErrMailerDisabled
	}
	templateID, ok := m.cfg.Templates[email.Template]
	if !ok || templateID == "" {
		return fmt.Errorf("no template configured for %q", email.Template)
	}

	params := make(map[string]interface{}, len(email.Params)+1)
	for k, v := range email.Params {
		params[k] = v
	}
	params["to_email"] = email.To

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         m.cfg.PublicKey,
		AccessToken:    m.cfg.AccessToken,
		TemplateParams: params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

// RecordingMailer keeps sent emails in memory
type RecordingMailer struct {
	mu   sync.Mutex
	sent []Email
	Err  error
}

func (r *RecordingMailer) Send(_ context.Context, email Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, email)
	return nil
}

func (r *RecordingMailer) Sent() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Email(nil), r.sent...)
}
