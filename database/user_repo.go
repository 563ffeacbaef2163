package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns nil without an error when no user has the email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateDetails writes the profile fields filled in by the get-started flow.
func (r *UserRepo) UpdateDetails(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).
		Select("name", "image", "year", "roles", "phone", "details_completed").
		Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindLatest returns the most recently joined users who completed their details.
func (r *UserRepo) FindLatest(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("details_completed = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// FindByAnyRole returns users holding at least one of roles, excluding one user.
func (r *UserRepo) FindByAnyRole(ctx context.Context, roles []models.Role, exclude uuid.UUID) ([]*models.User, error) {
	var users []*models.User
	if len(roles) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where(anyEnumCondition(r.db, "roles", roles)).
		Where("id <> ?", exclude).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
