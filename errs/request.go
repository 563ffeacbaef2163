package errs

import (
	"errors"
	"net/http"
)

var (
	Unauthorized = NewApiErr(http.StatusUnauthorized, "unauthorized")
)

// Authentication & Authorization Errors
var (
	ErrMissingToken  = errors.New("missing session token")
	ErrExpiredToken  = errors.New("expired session token")
	ErrInvalidToken  = errors.New("invalid session token")
	ErrNotAdmin      = errors.New("admin access required")
	ErrInvalidState  = errors.New("invalid oauth state")
	ErrUnknownOAuth  = errors.New("unknown identity provider")
	ErrExpiredSignIn = errors.New("sign-in link expired or already used")
)

func BadRequest(message string) *ApiErr {
	return NewApiErr(http.StatusBadRequest, message)
}

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		kind:       ErrUnauthorized,
		err:        ErrMissingToken,
		Details:    "Missing session token",
		Field:      "authorization",
	}
}

func NewExpiredTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		kind:       ErrUnauthorized,
		err:        ErrExpiredToken,
		Details:    "Session token has expired",
		Field:      "authorization",
	}
}

func NewInvalidTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		kind:       ErrUnauthorized,
		err:        ErrInvalidToken,
		Details:    "Invalid session token",
		Field:      "authorization",
	}
}

// NewNotAdminError is returned for the admin route tree. The status is 401,
// not 403, so the front end treats it like a signed-out session.
func NewNotAdminError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		kind:       ErrUnauthorized,
		err:        ErrNotAdmin,
		Field:      "authorization",
	}
}

func NewInvalidStateError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidState,
		Details:    "OAuth state does not match",
		Field:      "state",
	}
}

func NewUnknownProviderError(provider string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrUnknownOAuth,
		Details:    provider,
		Field:      "provider",
		kind:       ErrNotFound,
	}
}

func NewExpiredSignInError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		kind:       ErrUnauthorized,
		err:        ErrExpiredSignIn,
		Field:      "token",
	}
}

func IsMissingTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
