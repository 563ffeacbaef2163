package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yazameet/yazameet-backend/database"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	db        database.Database
}

func newAdminHandler(db database.Database) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		db:        db,
	}
}

// getStats counts users, projects, posts and pending requests concurrently
// @Summary Admin dashboard stats
// @Tags Admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized - admin only"
// @Router /admin/stats [get]
func (h adminHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stats StatsResponse
		g, ctx := errgroup.WithContext(r.Context())

		g.Go(func() (err error) {
			stats.UsersCount, err = h.db.UserRepo().Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			stats.ProjectsCount, err = h.db.ProjectRepo().Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			stats.PostsCount, err = h.db.BlogPostRepo().Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			stats.PendingRequestsCount, err = h.db.ContactRequestRepo().CountPending(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "stats", err))
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}
