package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yazameet/yazameet-backend/services"
)

// setupPublicRoutes mounts the routes readable without a session
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.health())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/projects", handlers.projectHandler.infiniteProjects())
	r.Get("/project/{projectID}", handlers.projectHandler.getProject())

	r.Get("/users/latest", handlers.userHandler.getLatestUsers())
	r.Get("/profile/{userID}", handlers.userHandler.getPublicProfile())

	r.Get("/blog/posts", handlers.blogPostHandler.getPublishedBlogPosts())
	r.With(authMiddleware.optional).Get("/blog/post/{slug}", handlers.blogPostHandler.getBlogPostBySlug())
}

func setupAuthRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, limiter services.RateLimiter) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/providers", handlers.authHandler.getProviders())
		r.With(rateLimit(limiter, emailSignInResource)).Post("/email", handlers.authHandler.emailSignIn())
		r.Get("/email/callback", handlers.authHandler.emailCallback())
		r.With(authMiddleware.authenticate).Get("/session", handlers.authHandler.getSession())
		r.Post("/logout", handlers.authHandler.logout())
		r.Get("/{provider}/login", handlers.authHandler.login())
		r.Get("/{provider}/callback", handlers.authHandler.callback())
	})
}

// setupProtectedRoutes mounts the routes that need a signed-in user
func setupProtectedRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, limiter services.RateLimiter) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		// User Handler endpoints
		r.Get("/user/me", handlers.userHandler.getCurrentUser())
		r.Post("/user/details", handlers.userHandler.addDetails())
		r.Put("/user/details", handlers.userHandler.updateDetails())

		// Project Handler endpoints
		r.Get("/projects/mine", handlers.projectHandler.getMyProjects())
		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())
		r.Post("/project/{projectID}/collaborators", handlers.projectHandler.addCollaborator())

		// Contact Request Handler endpoints
		r.Get("/project/{projectID}/contact-request", handlers.contactRequestHandler.getExistingRequest())
		r.Get("/project/{projectID}/contact-requests", handlers.contactRequestHandler.getProjectRequests())
		r.Post("/project/{projectID}/contact-requests", handlers.contactRequestHandler.submitContactRequest())
		r.Get("/contact-requests", handlers.contactRequestHandler.getAllContactRequests())
		r.Put("/contact-request/{requestID}", handlers.contactRequestHandler.updateRequest())

		r.With(rateLimit(limiter, "media")).Post("/media/presigned-url", handlers.mediaHandler.getPresignedURL())
	})
}

// setupAdminRoutes mounts the admin tree. Every route requires the admin session.
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(authMiddleware.requireAdmin)

		r.Get("/stats", handlers.adminHandler.getStats())

		// Blog Post Handler endpoints
		r.Get("/blog-posts", handlers.blogPostHandler.getAllBlogPosts())
		r.Post("/blog-post", handlers.blogPostHandler.createBlogPost())
		r.Put("/blog-post/{blogPostID}", handlers.blogPostHandler.updateBlogPost())
		r.Delete("/blog-post/{blogPostID}", handlers.blogPostHandler.deleteBlogPost())
	})
}
