package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

type contactRequestHandler struct {
	responder          Responder
	logger             zerolog.Logger
	db                 database.Database
	projectRepo        *database.ProjectRepo
	contactRequestRepo *database.ContactRequestRepo
	notifier           *services.Notifier
}

func newContactRequestHandler(db database.Database, notifier *services.Notifier) contactRequestHandler {
	logger := log.With().Str("handlerName", "contactRequestHandler").Logger()

	return contactRequestHandler{
		responder:          NewResponder(logger),
		logger:             logger,
		db:                 db,
		projectRepo:        db.ProjectRepo(),
		contactRequestRepo: db.ContactRequestRepo(),
		notifier:           notifier,
	}
}

// getExistingRequest returns the caller's request for a project, or null
// @Summary Existing contact request
// @Tags ContactRequests
// @Param projectID path int true "Project ID"
// @Success 200 {object} models.ContactRequest
// @Router /project/{projectID}/contact-request [get]
func (h contactRequestHandler) getExistingRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		projectID, err := uintParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		request, err := h.contactRequestRepo.FindExisting(r.Context(), user.ID, projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact request", err))
			return
		}
		h.responder.WriteJSON(w, request)
	}
}

// submitContactRequest asks to join a project and notifies its owner
// @Summary Submit contact request
// @Tags ContactRequests
// @Accept json
// @Produce json
// @Param projectID path int true "Project ID"
// @Param request body ContactRequestRequest true "Request"
// @Success 201 {object} models.ContactRequest
// @Failure 403 {object} ErrorResponse "Forbidden - own project"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Conflict - request already sent"
// @Router /project/{projectID}/contact-requests [post]
func (h contactRequestHandler) submitContactRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		projectID, err := uintParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req ContactRequestRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project.IsOwner(user.ID) {
			h.responder.WriteError(w, errs.NewForbiddenError("you cannot send a request to your own project"))
			return
		}

		existing, err := h.contactRequestRepo.FindExisting(r.Context(), user.ID, projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact request", err))
			return
		}
		if existing != nil {
			h.responder.WriteError(w, errs.NewAlreadyExists("contact request"))
			return
		}

		cv := strings.TrimSpace(req.CV)
		request := models.ContactRequest{
			ProjectID: project.ID,
			UserID:    user.ID,
			Purpose:   req.Purpose,
			Roles:     req.Roles,
			Notes:     strings.TrimSpace(req.Notes),
			CVURL:     &cv,
			Status:    models.RequestStatusPending,
		}
		if err := h.contactRequestRepo.Add(r.Context(), &request); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "contact request", err))
			return
		}

		// The request is stored; a failed email must not undo it.
		if err := h.notifier.ContactRequestReceived(r.Context(), project.CreatedBy, *user, *project); err != nil {
			h.logger.Error().Err(err).Uint("requestID", request.ID).Msg("failed to notify project owner")
		}

		h.responder.WriteStatusJSON(w, http.StatusCreated, request)
	}
}

// getAllContactRequests lists requests on the caller's projects
// @Summary Contact requests for my projects
// @Tags ContactRequests
// @Param projectIds query string true "Comma separated project ids"
// @Success 200 {array} ContactRequestResponse
// @Router /contact-requests [get]
func (h contactRequestHandler) getAllContactRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var projectIDs []uint
		for _, raw := range queryList(r, "projectIds") {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("projectIds", "must be project ids"))
				return
			}
			projectIDs = append(projectIDs, uint(id))
		}

		requests, err := h.contactRequestRepo.FindForOwner(r.Context(), user.ID, projectIDs)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact requests", err))
			return
		}
		h.responder.WriteJSON(w, newContactRequestResponses(requests))
	}
}

// getProjectRequests lists the requests on one project for its owner
// @Summary Project contact requests
// @Tags ContactRequests
// @Param projectID path int true "Project ID"
// @Success 200 {array} ContactRequestResponse
// @Failure 403 {object} ErrorResponse
// @Router /project/{projectID}/contact-requests [get]
func (h contactRequestHandler) getProjectRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		projectID, err := uintParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if !project.IsOwner(user.ID) {
			h.responder.WriteError(w, errs.NewForbiddenError("only the project owner can view its requests"))
			return
		}

		requests, err := h.contactRequestRepo.FindByProject(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact requests", err))
			return
		}
		h.responder.WriteJSON(w, newContactRequestResponses(requests))
	}
}

// updateRequest approves or rejects a pending request
// @Summary Decide contact request
// @Description APPROVED adds the requester as a collaborator. Both outcomes email the requester.
// @Tags ContactRequests
// @Param requestID path int true "Request ID"
// @Param body body UpdateRequestStatusRequest true "Decision"
// @Success 200 {object} ContactRequestResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Conflict - already decided"
// @Router /contact-request/{requestID} [put]
func (h contactRequestHandler) updateRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		requestID, err := uintParam(r, "requestID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req UpdateRequestStatusRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		request, err := h.contactRequestRepo.FindByID(r.Context(), requestID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "contact request", err))
			return
		}
		if !request.Project.IsOwner(user.ID) {
			h.responder.WriteError(w, errs.NewForbiddenError("only the project owner can decide requests"))
			return
		}

		err = h.db.Transaction(r.Context(), func(tx database.Database) error {
			ok, err := tx.ContactRequestRepo().Decide(r.Context(), request.ID, req.Status)
			if err != nil {
				return wrapDatabaseError("update", "contact request", err)
			}
			if !ok {
				return errs.NewConflictError("request has already been decided")
			}
			if req.Status != models.RequestStatusApproved {
				return nil
			}

			member, err := tx.ProjectRepo().IsCollaborator(r.Context(), request.ProjectID, request.UserID)
			if err != nil {
				return wrapDatabaseError("find", "collaborator", err)
			}
			if !member {
				if err := tx.ProjectRepo().AddCollaborator(r.Context(), request.ProjectID, request.UserID); err != nil {
					return wrapDatabaseError("add", "collaborator", err)
				}
			}
			if err := tx.ContactRequestRepo().MarkAddedToProject(r.Context(), request.ProjectID, request.UserID); err != nil {
				return wrapDatabaseError("update", "contact request", err)
			}
			request.AddedToProject = true
			return nil
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		request.Status = req.Status

		if err := h.notifier.RequestDecided(r.Context(), req.Status, request.User, *user, request.Project); err != nil {
			h.logger.Error().Err(err).Uint("requestID", request.ID).Msg("failed to notify requester")
		}

		h.responder.WriteJSON(w, newContactRequestResponse(request))
	}
}
