package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
)

const EventProjectCreated = "project/created"

type ProjectCreatedPayload struct {
	ProjectID   uint          `json:"projectId"`
	URL         string        `json:"url"`
	Roles       []models.Role `json:"roles"`
	CreatedByID uuid.UUID     `json:"createdById"`
}

// NewProjectEmailsHandler emails every user whose roles overlap the new
// project's needed roles. The creator is never notified.
func NewProjectEmailsHandler(users *database.UserRepo, notifier *Notifier) EventHandler {
	return func(ctx context.Context, event *models.Event) error {
		var payload ProjectCreatedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return errs.NewEventPayloadError(event.Name, err)
		}

		recipients, err := users.FindByAnyRole(ctx, payload.Roles, payload.CreatedByID)
		if err != nil {
			return err
		}

		emails := make([]string, 0, len(recipients))
		for _, user := range recipients {
			if user.Email != "" {
				emails = append(emails, user.Email)
			}
		}
		return notifier.NewProject(ctx, emails, payload.URL)
	}
}
