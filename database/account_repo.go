package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{db}
}

// FindByProvider returns the linked account, or nil when the identity is new.
func (r *AccountRepo) FindByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepo) Add(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Omit("User").Create(account).Error
}

type VerificationTokenRepo struct {
	db *gorm.DB
}

func NewVerificationTokenRepo(db *gorm.DB) *VerificationTokenRepo {
	return &VerificationTokenRepo{db}
}

func (r *VerificationTokenRepo) Add(ctx context.Context, token *models.VerificationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// Consume deletes the token with the given hash and returns it. Tokens are
// single use, so a second call with the same hash reports ErrRecordNotFound.
func (r *VerificationTokenRepo) Consume(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.VerificationToken{}, token.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *VerificationTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.VerificationToken{})
	return result.RowsAffected, result.Error
}
