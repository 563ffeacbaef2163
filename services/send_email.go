package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/errs"
)

// Email is one outgoing message.
type Email struct {
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
	// SendBatch delivers many independent messages in one provider call.
	SendBatch(ctx context.Context, emails []Email) error
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

type ResendBatchResponse struct {
	Data []ResendEmailResponse `json:"data"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMaxBatchSize is the most messages Resend accepts per batch call.
const ResendMaxBatchSize = 100

type ResendMailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: "https://api.resend.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  log.With().Str("service", "resend").Logger(),
	}
}

// WithBaseURL points the mailer at another Resend-compatible endpoint.
func (m *ResendMailer) WithBaseURL(baseURL string) *ResendMailer {
	m.baseURL = strings.TrimSuffix(baseURL, "/")
	return m
}

func (m *ResendMailer) payload(email Email) ResendEmailRequest {
	return ResendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	}
}

// Send sends an email using the Resend API
func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return errs.NewBadRequestError("at least one recipient is required")
	}

	var emailResponse ResendEmailResponse
	if err := m.post(ctx, "/emails", m.payload(email), &emailResponse); err != nil {
		return err
	}
	m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	return nil
}

// SendBatch posts to /emails/batch, splitting into calls of at most
// ResendMaxBatchSize messages.
func (m *ResendMailer) SendBatch(ctx context.Context, emails []Email) error {
	for start := 0; start < len(emails); start += ResendMaxBatchSize {
		end := min(start+ResendMaxBatchSize, len(emails))

		payloads := make([]ResendEmailRequest, 0, end-start)
		for _, email := range emails[start:end] {
			payloads = append(payloads, m.payload(email))
		}

		var batchResponse ResendBatchResponse
		if err := m.post(ctx, "/emails/batch", payloads, &batchResponse); err != nil {
			return err
		}
		m.logger.Info().Int("count", len(batchResponse.Data)).Msg("Successfully sent email batch via Resend")
	}
	return nil
}

func (m *ResendMailer) post(ctx context.Context, path string, payload, out any) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return errs.NewEmailDeliveryError(0, err.Error())
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return errs.NewEmailDeliveryError(resp.StatusCode, errorResp.Message)
		}
		return errs.NewEmailDeliveryError(resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	}
	return nil
}

// LogMailer writes emails to the log instead of delivering them. It is used
// when RESEND_API_KEY is not configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer() LogMailer {
	return LogMailer{logger: log.With().Str("service", "logMailer").Logger()}
}

func (m LogMailer) Send(ctx context.Context, email Email) error {
	m.logger.Info().Strs("to", email.To).Str("subject", email.Subject).Msg("Email not sent (no provider configured)")
	return nil
}

func (m LogMailer) SendBatch(ctx context.Context, emails []Email) error {
	for _, email := range emails {
		if err := m.Send(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

// NewMailer picks Resend when an API key is configured.
func NewMailer(cfg config.Config) Mailer {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	if apiKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, emails will only be logged")
		return NewLogMailer()
	}
	from := config.GetString(cfg, "EMAIL_FROM", config.GetString(cfg, "RESEND_FROM_EMAIL", "Yazameet <noreply@yazameet.com>"))
	mailer := NewResendMailer(apiKey, from)
	if baseURL := config.GetString(cfg, "RESEND_BASE_URL", ""); baseURL != "" {
		mailer.WithBaseURL(baseURL)
	}
	return mailer
}
