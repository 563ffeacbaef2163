package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/errs"
)

// Messenger sends short text notifications to a phone number.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsAppMessenger delivers messages through Twilio's WhatsApp channel.
type WhatsAppMessenger struct {
	api    messageCreator
	from   string
	logger zerolog.Logger
}

func NewWhatsAppMessenger(accountSID, authToken, from string) *WhatsAppMessenger {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newWhatsAppMessenger(client.Api, from)
}

func newWhatsAppMessenger(api messageCreator, from string) *WhatsAppMessenger {
	return &WhatsAppMessenger{
		api:    api,
		from:   whatsAppAddress(from),
		logger: log.With().Str("service", "whatsapp").Logger(),
	}
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

func (m *WhatsAppMessenger) Send(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsAppAddress(to))
	params.SetFrom(m.from)
	params.SetBody(body)

	resp, err := m.api.CreateMessage(params)
	if err != nil {
		return errs.NewMessageDeliveryError("whatsapp", err)
	}
	if resp != nil && resp.Sid != nil {
		m.logger.Info().Str("messageSid", *resp.Sid).Msg("Sent WhatsApp message")
	}
	return nil
}

// NoopMessenger drops messages. It is used when Twilio is not configured.
type NoopMessenger struct{}

func (NoopMessenger) Send(ctx context.Context, to, body string) error { return nil }

func NewMessenger(cfg config.Config) Messenger {
	sid := config.GetString(cfg, "TWILIO_ACCOUNT_SID", "")
	token := config.GetString(cfg, "TWILIO_AUTH_TOKEN", "")
	from := config.GetString(cfg, "TWILIO_WHATSAPP_FROM", "")
	if sid == "" || token == "" || from == "" {
		return NoopMessenger{}
	}
	return NewWhatsAppMessenger(sid, token, from)
}
