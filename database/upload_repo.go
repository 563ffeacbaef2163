package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

type UploadRepo struct {
	db *gorm.DB
}

func NewUploadRepo(db *gorm.DB) *UploadRepo {
	return &UploadRepo{db}
}

func (r *UploadRepo) Add(ctx context.Context, upload *models.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *UploadRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*models.Upload, error) {
	var uploads []*models.Upload
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}
