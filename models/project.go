package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a posting created by a user describing collaboration needs.
type Project struct {
	ID            uint                  `json:"id" db:"id" gorm:"primaryKey"`
	Name          string                `json:"name" db:"name" gorm:"type:text;not null"`
	Description   string                `json:"description" db:"description" gorm:"type:text;not null"`
	RolesNeeded   EnumList[Role]        `json:"rolesNeeded" db:"roles_needed" gorm:"type:text;not null;default:'[]'"`
	Types         EnumList[ProjectType] `json:"type" db:"types" gorm:"type:text;not null;default:'[]'"`
	CreatedByID   uuid.UUID             `json:"createdById" db:"created_by_id" gorm:"type:uuid;not null;index"`
	CreatedBy     User                  `json:"-" gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:CASCADE"`
	Collaborators []User                `json:"-" gorm:"many2many:project_collaborators;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `json:"createdAt" db:"created_at" gorm:"not null;index"`
	UpdatedAt     time.Time             `json:"updatedAt" db:"updated_at" gorm:"not null"`
}

// IsOwner reports whether userID created the project.
func (p Project) IsOwner(userID uuid.UUID) bool {
	return p.CreatedByID == userID
}

// HasMember reports whether userID is the owner or a collaborator.
func (p Project) HasMember(userID uuid.UUID) bool {
	if p.IsOwner(userID) {
		return true
	}
	for _, c := range p.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

// AllCollaborators lists the creator first, then the added collaborators.
func (p Project) AllCollaborators() []PublicProfile {
	profiles := make([]PublicProfile, 0, len(p.Collaborators)+1)
	if p.CreatedBy.ID != uuid.Nil {
		profiles = append(profiles, p.CreatedBy.Profile())
	}
	for _, c := range p.Collaborators {
		profiles = append(profiles, c.Profile())
	}
	return profiles
}
