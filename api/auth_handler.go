package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

const (
	stateCookieMaxAge = 10 * time.Minute
	emailProvider     = "email"

	emailSignInResource = "email-sign-in"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	db            database.Database
	sessions      *services.SessionManager
	providers     services.OAuthProviders
	notifier      *services.Notifier
	auth          authMiddleware
	frontendURL   string
	backendURL    string
	secureCookies bool
	limiter       services.RateLimiter
	now           func() time.Time
}

type authOptions struct {
	frontendURL   string
	backendURL    string
	secureCookies bool
	limiter       services.RateLimiter
}

func newAuthHandler(db database.Database, sessions *services.SessionManager, providers services.OAuthProviders, notifier *services.Notifier, auth authMiddleware, opts authOptions) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		db:            db,
		sessions:      sessions,
		providers:     providers,
		notifier:      notifier,
		auth:          auth,
		frontendURL:   strings.TrimSuffix(opts.frontendURL, "/"),
		backendURL:    strings.TrimSuffix(opts.backendURL, "/"),
		secureCookies: opts.secureCookies,
		limiter:       opts.limiter,
		now:           time.Now,
	}
}

func (h authHandler) setCookie(w http.ResponseWriter, name, value, path string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h authHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// finishSignIn issues the session cookie and sends the browser back to the
// front end. API clients asking for JSON get the token in the body instead.
func (h authHandler) finishSignIn(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, expiresAt, err := h.sessions.Issue(*user)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.setCookie(w, services.SessionCookieName, token, "/", h.sessions.TTL())

	h.logger.Info().Str("userID", user.ID.String()).Msg("user signed in")

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.responder.WriteJSON(w, SessionResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      *user,
			IsAdmin:   h.auth.isAdmin(user.Email),
		})
		return
	}

	target := h.frontendURL + "/"
	if !user.DetailsCompleted {
		target = h.frontendURL + "/auth/get-started"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// findOrCreateUser returns the user with email, creating one from the
// provider profile when none exists yet.
func findOrCreateUser(ctx context.Context, users *database.UserRepo, email, name, image string) (*models.User, error) {
	user, err := users.FindByEmail(ctx, email)
	if err != nil || user != nil {
		return user, err
	}

	user = &models.User{Email: email, Name: name}
	if image != "" {
		user.Image = &image
	}
	if err := users.Add(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// getProviders lists the configured sign-in methods
// @Summary Sign-in providers
// @Tags Auth
// @Success 200 {object} ProvidersResponse
// @Router /auth/providers [get]
func (h authHandler) getProviders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, ProvidersResponse{
			Providers: h.providers.Names(),
			Email:     h.notifier != nil,
		})
	}
}

// login redirects to the provider's consent page
// @Summary OAuth login
// @Tags Auth
// @Param provider path string true "google or discord"
// @Success 302
// @Failure 404 {object} ErrorResponse "Not Found - provider not configured"
// @Router /auth/{provider}/login [get]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := h.providers.Get(chi.URLParam(r, "provider"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		state, err := services.NewOAuthState()
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to create oauth state", err))
			return
		}
		h.setCookie(w, services.StateCookieName, state, "/auth", stateCookieMaxAge)
		http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	}
}

// callback completes the OAuth flow and signs the user in
// @Summary OAuth callback
// @Tags Auth
// @Param provider path string true "google or discord"
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 302
// @Failure 400 {object} ErrorResponse "Bad Request - state mismatch"
// @Failure 502 {object} ErrorResponse "Bad Gateway - provider exchange failed"
// @Router /auth/{provider}/callback [get]
func (h authHandler) callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := h.providers.Get(chi.URLParam(r, "provider"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		stateCookie, err := r.Cookie(services.StateCookieName)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			h.responder.WriteError(w, errs.NewInvalidStateError())
			return
		}
		h.clearCookie(w, services.StateCookieName, "/auth")

		code := r.URL.Query().Get("code")
		if code == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("code"))
			return
		}

		profile, err := provider.Exchange(r.Context(), code)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var user *models.User
		err = h.db.Transaction(r.Context(), func(tx database.Database) error {
			account, err := tx.AccountRepo().FindByProvider(r.Context(), provider.Name, profile.ProviderAccountID)
			if err != nil {
				return err
			}
			if account != nil {
				user = &account.User
				return nil
			}

			user, err = findOrCreateUser(r.Context(), tx.UserRepo(), profile.Email, profile.Name, profile.Image)
			if err != nil {
				return err
			}
			return tx.AccountRepo().Add(r.Context(), &models.Account{
				UserID:            user.ID,
				Provider:          provider.Name,
				ProviderAccountID: profile.ProviderAccountID,
			})
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("sign in", "user", err))
			return
		}

		h.finishSignIn(w, r, user)
	}
}

// emailSignIn emails a single-use sign-in link valid for 24 hours
// @Summary Email sign-in
// @Tags Auth
// @Accept json
// @Param body body EmailSignInRequest true "Email"
// @Success 200 {object} MessageResponse
// @Router /auth/email [post]
func (h authHandler) emailSignIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EmailSignInRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		// Per-address limit on top of the per-client one, so rotating clients
		// cannot flood one inbox.
		if h.limiter != nil {
			allowed, err := h.limiter.Allow(r.Context(), emailSignInResource+"-address", email)
			if err != nil {
				h.logger.Warn().Err(err).Msg("rate limiter error, allowing request")
				allowed = true
			}
			if !allowed {
				h.responder.WriteError(w, errs.NewTooManyRequestsError(emailSignInResource))
				return
			}
		}

		token, hash, err := services.NewSignInToken()
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to create sign-in token", err))
			return
		}

		verification := models.VerificationToken{
			Email:     email,
			TokenHash: hash,
			ExpiresAt: h.now().Add(services.SignInTokenTTL),
		}
		if err := h.db.VerificationTokenRepo().Add(r.Context(), &verification); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "verification token", err))
			return
		}

		link := h.backendURL + "/auth/email/callback?token=" + url.QueryEscape(token)
		if err := h.notifier.SignInLink(r.Context(), email, link); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, MessageResponse{
			Status:  "success",
			Message: "check your email for a sign-in link",
		})
	}
}

// emailCallback consumes a sign-in link
// @Summary Email sign-in callback
// @Tags Auth
// @Param token query string true "Sign-in token"
// @Success 302
// @Failure 401 {object} ErrorResponse "Unauthorized - link expired or already used"
// @Router /auth/email/callback [get]
func (h authHandler) emailCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("token"))
			return
		}

		verification, err := h.db.VerificationTokenRepo().Consume(r.Context(), services.HashToken(token))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.responder.WriteError(w, errs.NewExpiredSignInError())
			return
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("consume", "verification token", err))
			return
		}
		if h.now().After(verification.ExpiresAt) {
			h.responder.WriteError(w, errs.NewExpiredSignInError())
			return
		}

		var user *models.User
		err = h.db.Transaction(r.Context(), func(tx database.Database) error {
			user, err = findOrCreateUser(r.Context(), tx.UserRepo(), verification.Email, "", "")
			if err != nil {
				return err
			}
			account, err := tx.AccountRepo().FindByProvider(r.Context(), emailProvider, verification.Email)
			if err != nil || account != nil {
				return err
			}
			return tx.AccountRepo().Add(r.Context(), &models.Account{
				UserID:            user.ID,
				Provider:          emailProvider,
				ProviderAccountID: verification.Email,
			})
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("sign in", "user", err))
			return
		}

		h.finishSignIn(w, r, user)
	}
}

// getSession returns the current session. Mounted behind authenticate.
// @Summary Current session
// @Tags Auth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/session [get]
func (h authHandler) getSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		claims, err := ctxGetClaims(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		h.responder.WriteJSON(w, SessionResponse{
			ExpiresAt: claims.ExpiresAt.Time,
			User:      *user,
			IsAdmin:   ctxIsAdmin(r.Context()),
		})
	}
}

// logout clears the session cookie
// @Summary Logout
// @Tags Auth
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.clearCookie(w, services.SessionCookieName, "/")
		h.responder.WriteJSON(w, MessageResponse{
			Status:  "success",
			Message: "signed out",
		})
	}
}
