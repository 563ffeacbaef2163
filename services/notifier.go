package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/models"
)

// NewProjectBatchSize caps recipients per batch call when announcing a project.
const NewProjectBatchSize = 100

type NewProjectData struct {
	ProjectURL string
}

type ContactRequestData struct {
	ProjectName   string
	RequesterName string
	RequestURL    string
}

type DecisionData struct {
	ProjectName string
	OwnerName   string
	ProjectURL  string
}

type SignInData struct {
	SignInURL string
}

// Notifier turns domain transitions into emails and, when the recipient has
// a phone number, WhatsApp messages.
type Notifier struct {
	mailer    Mailer
	messenger Messenger
	templates *EmailTemplates
	baseURL   string
	logger    zerolog.Logger
}

func NewNotifier(mailer Mailer, messenger Messenger, templates *EmailTemplates, baseURL string) *Notifier {
	if messenger == nil {
		messenger = NoopMessenger{}
	}
	return &Notifier{
		mailer:    mailer,
		messenger: messenger,
		templates: templates,
		baseURL:   baseURL,
		logger:    log.With().Str("service", "notifier").Logger(),
	}
}

// NewProject announces a project to recipients, one message each, in batches
// of at most NewProjectBatchSize.
func (n *Notifier) NewProject(ctx context.Context, recipients []string, projectURL string) error {
	if len(recipients) == 0 {
		return nil
	}

	html, err := n.templates.Render(TemplateNewProject, NewProjectData{ProjectURL: projectURL})
	if err != nil {
		return err
	}

	for start := 0; start < len(recipients); start += NewProjectBatchSize {
		end := min(start+NewProjectBatchSize, len(recipients))
		batch := make([]Email, 0, end-start)
		for _, to := range recipients[start:end] {
			batch = append(batch, Email{
				To:      []string{to},
				Subject: "New Project is waiting for you in Yazameet",
				HTML:    html,
			})
		}
		if err := n.mailer.SendBatch(ctx, batch); err != nil {
			return err
		}
	}

	n.logger.Info().Int("recipients", len(recipients)).Str("projectUrl", projectURL).Msg("New project emails sent")
	return nil
}

// ContactRequestReceived tells the project owner about a new request. The
// WhatsApp message is best effort; a failure there is only logged.
func (n *Notifier) ContactRequestReceived(ctx context.Context, owner, requester models.User, project models.Project) error {
	requestURL := BuildProjectRequestsURL(n.baseURL, project.ID)
	html, err := n.templates.Render(TemplateContactRequest, ContactRequestData{
		ProjectName:   project.Name,
		RequesterName: requester.Name,
		RequestURL:    requestURL,
	})
	if err != nil {
		return err
	}

	err = n.mailer.Send(ctx, Email{
		To:      []string{owner.Email},
		Subject: fmt.Sprintf("New Contact Request for %s", project.Name),
		HTML:    html,
	})
	if err != nil {
		return err
	}

	if owner.Phone != nil && *owner.Phone != "" {
		body := fmt.Sprintf("%s sent a contact request for %s on Yazameet: %s", requester.Name, project.Name, requestURL)
		if err := n.messenger.Send(ctx, *owner.Phone, body); err != nil {
			n.logger.Warn().Err(err).Str("ownerId", owner.ID.String()).Msg("WhatsApp notification failed")
		}
	}
	return nil
}

// RequestDecided emails the requester the outcome of their request.
func (n *Notifier) RequestDecided(ctx context.Context, status models.RequestStatus, requester, owner models.User, project models.Project) error {
	data := DecisionData{
		ProjectName: project.Name,
		OwnerName:   owner.Name,
		ProjectURL:  BuildProjectURL(n.baseURL, project.ID),
	}

	var name, subject string
	switch status {
	case models.RequestStatusApproved:
		name = TemplateApprovedRequest
		subject = fmt.Sprintf("Your request to join %s was approved", project.Name)
	case models.RequestStatusRejected:
		name = TemplateRejectedRequest
		subject = fmt.Sprintf("Update on your request to join %s", project.Name)
	default:
		return fmt.Errorf("no notification for request status %q", status)
	}

	html, err := n.templates.Render(name, data)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Email{
		To:      []string{requester.Email},
		Subject: subject,
		HTML:    html,
	})
}

func (n *Notifier) SignInLink(ctx context.Context, email, signInURL string) error {
	html, err := n.templates.Render(TemplateSignIn, SignInData{SignInURL: signInURL})
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Email{
		To:      []string{email},
		Subject: "Sign in to Yazameet",
		HTML:    html,
	})
}
