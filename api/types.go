package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/yazameet/yazameet-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	userHandler           userHandler
	projectHandler        projectHandler
	contactRequestHandler contactRequestHandler
	mediaHandler          mediaHandler
	blogPostHandler       blogPostHandler
	adminHandler          adminHandler
	authHandler           authHandler
	healthHandler         healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// User payloads

type AddDetailsRequest struct {
	FullName       string        `json:"fullName" validate:"notblank"`
	ProfilePicture string        `json:"profilePicture" validate:"notblank"`
	Year           models.Year   `json:"year" validate:"required,year"`
	Roles          []models.Role `json:"roles" validate:"required,min=1,dive,role"`
}

type UpdateDetailsRequest struct {
	FullName       string        `json:"fullName" validate:"notblank"`
	ProfilePicture *string       `json:"profilePicture" validate:"omitempty,min=1"`
	Year           models.Year   `json:"year" validate:"required,year"`
	Roles          []models.Role `json:"roles" validate:"required,min=1,dive,role"`
	Phone          *string       `json:"phone" validate:"omitempty,e164"`
}

type CurrentUserResponse struct {
	models.User
	Phone   *string `json:"phone,omitempty"`
	IsAdmin bool    `json:"isAdmin"`
}

// Project payloads

type ProjectRequest struct {
	Name        string               `json:"name" validate:"notblank"`
	Description string               `json:"description" validate:"notblank"`
	RolesNeeded []models.Role        `json:"rolesNeeded" validate:"dive,role"`
	Type        []models.ProjectType `json:"type" validate:"dive,projecttype"`
}

type ProjectResponse struct {
	models.Project
	CreatedBy     models.PublicProfile   `json:"createdBy"`
	Collaborators []models.PublicProfile `json:"collaborators"`
}

func newProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		Project:       *p,
		CreatedBy:     p.CreatedBy.Profile(),
		Collaborators: p.AllCollaborators(),
	}
}

func newProjectResponses(projects []*models.Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, newProjectResponse(p))
	}
	return responses
}

type ProjectPageResponse struct {
	Items      []ProjectResponse `json:"items"`
	NextCursor *uint             `json:"nextCursor"`
}

type AddCollaboratorRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// Contact request payloads

type ContactRequestRequest struct {
	Notes   string                `json:"notes" validate:"notblank"`
	Roles   []models.Role         `json:"roles" validate:"required,min=1,dive,role"`
	CV      string                `json:"cv" validate:"notblank"`
	Purpose models.ContactPurpose `json:"purpose" validate:"required,purpose"`
}

type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,decision"`
}

type ContactRequestResponse struct {
	models.ContactRequest
	User    *models.PublicProfile `json:"user,omitempty"`
	Project *ProjectSummary       `json:"project,omitempty"`
}

type ProjectSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newContactRequestResponse(cr *models.ContactRequest) ContactRequestResponse {
	response := ContactRequestResponse{ContactRequest: *cr}
	if cr.User.ID != uuid.Nil {
		profile := cr.User.Profile()
		response.User = &profile
	}
	if cr.Project.ID != 0 {
		response.Project = &ProjectSummary{ID: cr.Project.ID, Name: cr.Project.Name}
	}
	return response
}

func newContactRequestResponses(requests []*models.ContactRequest) []ContactRequestResponse {
	responses := make([]ContactRequestResponse, 0, len(requests))
	for _, cr := range requests {
		responses = append(responses, newContactRequestResponse(cr))
	}
	return responses
}

// Media payloads

type PresignedURLRequest struct {
	FileName string `json:"fileName" validate:"notblank"`
	FileType string `json:"fileType" validate:"notblank"`
}

type PresignedURLResponse struct {
	UploadURL string `json:"uploadURL"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
}

// Blog payloads

type BlogPostRequest struct {
	Title      string  `json:"title" validate:"notblank"`
	Content    string  `json:"content" validate:"notblank"`
	Slug       string  `json:"slug" validate:"notblank"`
	Published  bool    `json:"published"`
	CoverImage *string `json:"coverImage"`
}

// Admin payloads

type StatsResponse struct {
	UsersCount           int64 `json:"usersCount"`
	ProjectsCount        int64 `json:"projectsCount"`
	PostsCount           int64 `json:"postsCount"`
	PendingRequestsCount int64 `json:"pendingRequestsCount"`
}

// Auth payloads

type EmailSignInRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SessionResponse struct {
	Token     string      `json:"token,omitempty"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
	IsAdmin   bool        `json:"isAdmin"`
}

type ProvidersResponse struct {
	Providers []string `json:"providers"`
	Email     bool     `json:"email"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}
