package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

type ContactRequestRepo struct {
	db *gorm.DB
}

func NewContactRequestRepo(db *gorm.DB) *ContactRequestRepo {
	return &ContactRequestRepo{db}
}

func (r *ContactRequestRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Project").Preload("Project.CreatedBy")
}

// FindExisting returns the user's request for a project, or nil when none exists.
func (r *ContactRequestRepo) FindExisting(ctx context.Context, userID uuid.UUID, projectID uint) (*models.ContactRequest, error) {
	var request models.ContactRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *ContactRequestRepo) FindByID(ctx context.Context, id uint) (*models.ContactRequest, error) {
	var request models.ContactRequest
	if err := r.withRelations(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindForOwner returns requests on the given projects that ownerID created.
// Requests on projects owned by someone else are left out.
func (r *ContactRequestRepo) FindForOwner(ctx context.Context, ownerID uuid.UUID, projectIDs []uint) ([]*models.ContactRequest, error) {
	var requests []*models.ContactRequest
	if len(projectIDs) == 0 {
		return requests, nil
	}
	err := r.withRelations(ctx).
		Joins("JOIN projects ON projects.id = contact_requests.project_id").
		Where("contact_requests.project_id IN ?", projectIDs).
		Where("projects.created_by_id = ?", ownerID).
		Order("contact_requests.created_at DESC").
		Order("contact_requests.id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ContactRequestRepo) FindByProject(ctx context.Context, projectID uint) ([]*models.ContactRequest, error) {
	var requests []*models.ContactRequest
	err := r.withRelations(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *ContactRequestRepo) Add(ctx context.Context, request *models.ContactRequest) error {
	return r.db.WithContext(ctx).Omit("Project", "User").Create(request).Error
}

// Decide moves a PENDING request to status. It reports ok=false when the
// request was already decided, so concurrent decisions cannot both win.
func (r *ContactRequestRepo) Decide(ctx context.Context, id uint, status models.RequestStatus) (ok bool, err error) {
	result := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Update("status", status)
	return result.RowsAffected == 1, result.Error
}

func (r *ContactRequestRepo) MarkAddedToProject(ctx context.Context, projectID uint, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("added_to_project", true).Error
}

func (r *ContactRequestRepo) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("status = ?", models.RequestStatusPending).
		Count(&count).Error
	return count, err
}
