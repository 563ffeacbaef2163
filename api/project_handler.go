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

const (
	defaultProjectPageSize = 50
	maxProjectPageSize     = 100
)

type projectHandler struct {
	responder          Responder
	logger             zerolog.Logger
	db                 database.Database
	projectRepo        *database.ProjectRepo
	userRepo           *database.UserRepo
	contactRequestRepo *database.ContactRequestRepo
	baseURL            string
}

func newProjectHandler(db database.Database, baseURL string) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:          NewResponder(logger),
		logger:             logger,
		db:                 db,
		projectRepo:        db.ProjectRepo(),
		userRepo:           db.UserRepo(),
		contactRequestRepo: db.ContactRequestRepo(),
		baseURL:            baseURL,
	}
}

// ownedProject loads the project from the projectID path parameter and
// checks that the signed-in user created it.
func (h projectHandler) ownedProject(r *http.Request) (*models.User, *models.Project, error) {
	user, err := ctxGetUser(r.Context())
	if err != nil {
		return nil, nil, errs.Unauthorized
	}
	projectID, err := uintParam(r, "projectID")
	if err != nil {
		return nil, nil, err
	}
	project, err := h.projectRepo.FindByID(r.Context(), projectID)
	if err != nil {
		return nil, nil, wrapDatabaseError("find", "project", err)
	}
	if !project.IsOwner(user.ID) {
		return nil, nil, errs.NewForbiddenError("only the project owner can do this")
	}
	return user, project, nil
}

// infiniteProjects returns one page of projects, newest first
// @Summary List projects
// @Description Cursor paginated list. Filters: query matches name or description, types and roles match any.
// @Tags Projects
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param cursor query int false "Project id the page starts at"
// @Param query query string false "Search text"
// @Param types query string false "Comma separated project types"
// @Param roles query string false "Comma separated roles"
// @Success 200 {object} ProjectPageResponse
// @Failure 400 {object} ErrorResponse
// @Router /projects [get]
func (h projectHandler) infiniteProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseProjectFilter(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, next, err := h.projectRepo.FindPage(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, ProjectPageResponse{
			Items:      newProjectResponses(projects),
			NextCursor: next,
		})
	}
}

func parseProjectFilter(r *http.Request) (database.ProjectFilter, error) {
	q := r.URL.Query()
	filter := database.ProjectFilter{
		Limit: defaultProjectPageSize,
		Query: strings.TrimSpace(q.Get("query")),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxProjectPageSize {
			return filter, errs.NewInvalidFieldError("limit", "must be between 1 and 100")
		}
		filter.Limit = limit
	}

	if raw := q.Get("cursor"); raw != "" {
		cursor, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, errs.NewInvalidFieldError("cursor", "must be a project id")
		}
		c := uint(cursor)
		filter.Cursor = &c
	}

	for _, raw := range queryList(r, "types") {
		t := models.ProjectType(raw)
		if !t.Valid() {
			return filter, errs.NewInvalidFieldError("types", "unknown value "+strconv.Quote(raw))
		}
		filter.Types = append(filter.Types, t)
	}
	for _, raw := range queryList(r, "roles") {
		role := models.Role(raw)
		if !role.Valid() {
			return filter, errs.NewInvalidFieldError("roles", "unknown value "+strconv.Quote(raw))
		}
		filter.Roles = append(filter.Roles, role)
	}
	return filter, nil
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path int true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

// getMyProjects lists the projects the signed-in user created
// @Summary My projects
// @Tags Projects
// @Success 200 {array} ProjectResponse
// @Router /projects/mine [get]
func (h projectHandler) getMyProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projects, err := h.projectRepo.FindByOwner(r.Context(), user.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, newProjectResponses(projects))
	}
}

// createProject creates a project owned by the signed-in user and queues the
// new-project emails in the same transaction
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body ProjectRequest true "Project data"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse
// @Router /project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req ProjectRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := models.Project{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			RolesNeeded: req.RolesNeeded,
			Types:       req.Type,
			CreatedByID: user.ID,
		}

		err = h.db.Transaction(r.Context(), func(tx database.Database) error {
			if err := tx.ProjectRepo().Add(r.Context(), &project); err != nil {
				return wrapDatabaseError("create", "project", err)
			}
			_, err := services.NewEventBus(tx.EventRepo()).Publish(r.Context(), services.EventProjectCreated, services.ProjectCreatedPayload{
				ProjectID:   project.ID,
				URL:         services.BuildProjectURL(h.baseURL, project.ID),
				Roles:       project.RolesNeeded,
				CreatedByID: user.ID,
			})
			if err != nil {
				return wrapDatabaseError("publish", "event", err)
			}
			return nil
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		created, err := h.projectRepo.FindByID(r.Context(), project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created", "project", err))
			return
		}

		h.logger.Info().Uint("projectID", created.ID).Str("userID", user.ID.String()).Msg("project created")
		h.responder.WriteStatusJSON(w, http.StatusCreated, newProjectResponse(created))
	}
}

// updateProject edits a project. Only the owner may update it.
// @Summary Update project
// @Tags Projects
// @Param projectID path int true "Project ID"
// @Param project body ProjectRequest true "Updated project data"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, project, err := h.ownedProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req ProjectRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project.Name = strings.TrimSpace(req.Name)
		project.Description = strings.TrimSpace(req.Description)
		project.RolesNeeded = req.RolesNeeded
		project.Types = req.Type

		if err := h.projectRepo.Update(r.Context(), project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

// deleteProject deletes a project and its contact requests
// @Summary Delete project
// @Tags Projects
// @Param projectID path int true "Project ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, project, err := h.ownedProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), project.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}

// addCollaborator links another user to the project
// @Summary Add collaborator
// @Tags Projects
// @Param projectID path int true "Project ID"
// @Param body body AddCollaboratorRequest true "Collaborator"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /project/{projectID}/collaborators [post]
func (h projectHandler) addCollaborator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, project, err := h.ownedProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req AddCollaboratorRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if project.HasMember(req.UserID) {
			h.responder.WriteError(w, errs.NewConflictError("user is already a member of this project"))
			return
		}
		if _, err := h.userRepo.FindByID(r.Context(), req.UserID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}

		err = h.db.Transaction(r.Context(), func(tx database.Database) error {
			if err := tx.ProjectRepo().AddCollaborator(r.Context(), project.ID, req.UserID); err != nil {
				return err
			}
			return tx.ContactRequestRepo().MarkAddedToProject(r.Context(), project.ID, req.UserID)
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("add", "collaborator", err))
			return
		}

		updated, err := h.projectRepo.FindByID(r.Context(), project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		h.responder.WriteJSON(w, newProjectResponse(updated))
	}
}
