package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusPending EventStatus = "PENDING"
	EventStatusDone    EventStatus = "DONE"
	EventStatusFailed  EventStatus = "FAILED"
)

// Event is an outbox row consumed by the background worker.
type Event struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string         `json:"name" db:"name" gorm:"type:text;not null;index"`
	Payload     datatypes.JSON `json:"payload" db:"payload"`
	Status      EventStatus    `json:"status" db:"status" gorm:"type:text;not null;default:'PENDING';index:idx_event_due"`
	Attempts    int            `json:"attempts" db:"attempts" gorm:"not null;default:0"`
	LastError   *string        `json:"lastError,omitempty" db:"last_error" gorm:"type:text"`
	RunAt       time.Time      `json:"runAt" db:"run_at" gorm:"not null;index:idx_event_due"`
	ProcessedAt *time.Time     `json:"processedAt,omitempty" db:"processed_at"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.RunAt.IsZero() {
		e.RunAt = time.Now()
	}
	return nil
}
