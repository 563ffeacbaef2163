package models

import (
	"time"

	"github.com/google/uuid"
)

// Account links a user to an identity-provider account.
type Account struct {
	ID                uint      `json:"id" db:"id" gorm:"primaryKey"`
	UserID            uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;not null;index"`
	Provider          string    `json:"provider" db:"provider" gorm:"type:text;not null;uniqueIndex:idx_account_provider"`
	ProviderAccountID string    `json:"providerAccountId" db:"provider_account_id" gorm:"type:text;not null;uniqueIndex:idx_account_provider"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// VerificationToken backs email sign-in links. Only the sha256 of the token
// sent by email is stored.
type VerificationToken struct {
	ID        uint      `db:"id" gorm:"primaryKey"`
	Email     string    `db:"email" gorm:"type:text;not null;index"`
	TokenHash string    `db:"token_hash" gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt time.Time `db:"expires_at" gorm:"not null"`
	CreatedAt time.Time `db:"created_at"`
}
