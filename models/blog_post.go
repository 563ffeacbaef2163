package models

import "time"

// BlogPost is an admin-authored article addressed by slug.
type BlogPost struct {
	ID         uint      `json:"id" db:"id" gorm:"primaryKey"`
	Title      string    `json:"title" db:"title" gorm:"type:text;not null"`
	Content    string    `json:"content" db:"content" gorm:"type:text;not null"`
	Slug       string    `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex"`
	Published  bool      `json:"published" db:"published" gorm:"not null;default:false;index"`
	CoverImage *string   `json:"coverImage,omitempty" db:"cover_image" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at" gorm:"not null"`
}
