package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload records a presigned upload URL handed to a user.
type Upload struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID      uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;not null;index"`
	Key         string    `json:"key" db:"key" gorm:"type:text;not null;uniqueIndex"`
	FileName    string    `json:"fileName" db:"file_name" gorm:"type:text;not null"`
	ContentType string    `json:"contentType" db:"content_type" gorm:"type:text;not null"`
	PublicURL   string    `json:"fileUrl" db:"public_url" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
