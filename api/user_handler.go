package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
)

const (
	defaultLatestUsers = 10
	maxLatestUsers     = 50
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
}

func newUserHandler(userRepo *database.UserRepo) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
	}
}

// addDetails completes the get-started flow for the signed-in user
// @Summary Add user details
// @Tags Users
// @Accept json
// @Produce json
// @Param details body AddDetailsRequest true "Profile details"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /user/details [post]
func (h userHandler) addDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req AddDetailsRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		year := req.Year
		user.Name = req.FullName
		user.Image = &req.ProfilePicture
		user.Year = &year
		user.Roles = req.Roles
		user.DetailsCompleted = true

		if err := h.userRepo.UpdateDetails(r.Context(), user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// updateDetails edits the signed-in user's profile. A missing profilePicture
// keeps the current image.
// @Summary Update user details
// @Tags Users
// @Router /user/details [put]
func (h userHandler) updateDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req UpdateDetailsRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		year := req.Year
		user.Name = req.FullName
		if req.ProfilePicture != nil {
			user.Image = req.ProfilePicture
		}
		user.Year = &year
		user.Roles = req.Roles
		user.Phone = req.Phone
		user.DetailsCompleted = true

		if err := h.userRepo.UpdateDetails(r.Context(), user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// getCurrentUser returns the signed-in user
// @Summary Get current user
// @Tags Users
// @Success 200 {object} CurrentUserResponse
// @Router /user/me [get]
func (h userHandler) getCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		h.responder.WriteJSON(w, CurrentUserResponse{
			User:    *user,
			Phone:   user.Phone,
			IsAdmin: ctxIsAdmin(r.Context()),
		})
	}
}

// getLatestUsers lists the newest members who finished the get-started flow
// @Summary Latest users
// @Tags Users
// @Param limit query int false "Number of users (max 50)"
// @Success 200 {array} models.PublicProfile
// @Router /users/latest [get]
func (h userHandler) getLatestUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLatestUsers
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxLatestUsers {
				h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be between 1 and 50"))
				return
			}
			limit = parsed
		}

		users, err := h.userRepo.FindLatest(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "users", err))
			return
		}

		profiles := make([]models.PublicProfile, 0, len(users))
		for _, u := range users {
			profiles = append(profiles, u.Profile())
		}
		h.responder.WriteJSON(w, profiles)
	}
}

// getPublicProfile returns the public part of a user's profile
// @Summary Public profile
// @Tags Users
// @Param userID path string true "User ID" format(uuid)
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} ErrorResponse
// @Router /profile/{userID} [get]
func (h userHandler) getPublicProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "userID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userRepo.FindByID(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}

		h.responder.WriteJSON(w, user.Profile())
	}
}
