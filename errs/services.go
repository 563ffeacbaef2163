package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-Party Service Errors
var (
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrMessageDelivery    = errors.New("message delivery failed")
	ErrOAuthExchange      = errors.New("identity provider exchange failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

// Event Queue Errors
var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrEventPayload   = errors.New("invalid event payload")
	ErrEventExhausted = errors.New("event retries exhausted")
)

func NewStorageError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrStorageUnavailable,
		Details:    fmt.Sprintf("Object storage failed to %s", operation),
		Cause:      cause,
		Field:      "storage",
	}
}

// NewEmailDeliveryError reports a non-2xx answer from the email provider.
func NewEmailDeliveryError(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrEmailDelivery,
		Details:    fmt.Sprintf("provider returned status %d: %s", statusCode, message),
		Field:      "email",
	}
}

func NewMessageDeliveryError(channel string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrMessageDelivery,
		Details:    fmt.Sprintf("Failed to deliver %s message", channel),
		Cause:      cause,
		Field:      channel,
	}
}

func NewOAuthExchangeError(provider string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrOAuthExchange,
		Details:    fmt.Sprintf("Sign-in with %s failed", provider),
		Cause:      cause,
		Field:      "provider",
	}
}

func NewServiceUnavailableError(service string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s is not configured", service),
	}
}

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Missing configuration value: %s", key),
		Field:      key,
	}
}

func NewUnknownEventError(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownEvent, name)
}

func NewEventPayloadError(name string, cause error) error {
	return fmt.Errorf("%w for %s: %v", ErrEventPayload, name, cause)
}

func IsEmailDeliveryError(err error) bool {
	return errors.Is(err, ErrEmailDelivery)
}

func IsUnknownEventError(err error) bool {
	return errors.Is(err, ErrUnknownEvent)
}

func IsServiceUnavailableError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}
