package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactRequest is a user's application to join a project. A user holds at
// most one request per project.
type ContactRequest struct {
	ID             uint           `json:"id" db:"id" gorm:"primaryKey"`
	ProjectID      uint           `json:"projectId" db:"project_id" gorm:"not null;uniqueIndex:idx_contact_request_user_project"`
	UserID         uuid.UUID      `json:"userId" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_contact_request_user_project"`
	Purpose        ContactPurpose `json:"purpose" db:"purpose" gorm:"type:text;not null"`
	Roles          EnumList[Role] `json:"roles" db:"roles" gorm:"type:text;not null;default:'[]'"`
	Notes          string         `json:"notes" db:"notes" gorm:"type:text;not null"`
	CVURL          *string        `json:"cvUrl,omitempty" db:"cv_url" gorm:"column:cv_url;type:text"`
	Status         RequestStatus  `json:"status" db:"status" gorm:"type:text;not null;default:'PENDING';index"`
	AddedToProject bool           `json:"addedToProject" db:"added_to_project" gorm:"not null;default:false"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at" gorm:"not null"`

	Project Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	User    User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
