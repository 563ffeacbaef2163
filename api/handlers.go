package api

import (
	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, router router, auth authMiddleware) *routeHandlers {
	svc := router.services
	return &routeHandlers{
		userHandler:           newUserHandler(db.UserRepo()),
		projectHandler:        newProjectHandler(db, router.frontendURL),
		contactRequestHandler: newContactRequestHandler(db, svc.Notifier),
		mediaHandler:          newMediaHandler(db.UploadRepo(), svc.Storage),
		blogPostHandler:       newBlogPostHandler(db.BlogPostRepo()),
		adminHandler:          newAdminHandler(db),
		authHandler: newAuthHandler(db, svc.Sessions, svc.OAuth, svc.Notifier, auth, authOptions{
			frontendURL:   router.frontendURL,
			backendURL:    router.backendURL,
			secureCookies: router.secureCookies,
			limiter:       svc.RateLimiter,
		}),
		healthHandler: newHealthHandler(db, router.startupTime),
	}
}

// Services are the outbound integrations the handlers depend on.
type Services struct {
	Sessions    *services.SessionManager
	OAuth       services.OAuthProviders
	Notifier    *services.Notifier
	Storage     services.Presigner
	RateLimiter services.RateLimiter
}
