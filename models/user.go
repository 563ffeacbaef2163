package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a hub member. Name, image, year and roles are filled in by the
// get-started flow after first sign-in.
type User struct {
	ID               uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name             string         `json:"name" db:"name" gorm:"type:text"`
	Email            string         `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	Image            *string        `json:"image,omitempty" db:"image" gorm:"type:text"`
	Year             *Year          `json:"year,omitempty" db:"year" gorm:"type:text"`
	Roles            EnumList[Role] `json:"roles" db:"roles" gorm:"type:text;not null;default:'[]'"`
	Phone            *string        `json:"-" db:"phone" gorm:"type:text"`
	DetailsCompleted bool           `json:"detailsCompleted" db:"details_completed" gorm:"not null;default:false"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt        time.Time      `json:"updatedAt" db:"updated_at" gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicProfile is the subset of a user shown on /profile/{id}.
type PublicProfile struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Image     *string        `json:"image,omitempty"`
	Year      *Year          `json:"year,omitempty"`
	Roles     EnumList[Role] `json:"roles"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Year:      u.Year,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}
