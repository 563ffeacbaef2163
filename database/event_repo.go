package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db}
}

func (r *EventRepo) Add(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *EventRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ClaimDue leases up to limit PENDING events whose run_at has passed. A
// claim increments attempts and pushes run_at out by lease, so another
// worker skips the event until the lease runs out. Claims are conditional
// on the row being unchanged, which makes them safe across processes.
func (r *EventRepo) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.Event, error) {
	var due []*models.Event
	err := r.db.WithContext(ctx).
		Where("status = ? AND run_at <= ?", models.EventStatusPending, now).
		Order("run_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]*models.Event, 0, len(due))
	for _, event := range due {
		leaseUntil := now.Add(lease)
		result := r.db.WithContext(ctx).
			Model(&models.Event{}).
			Where("id = ? AND status = ? AND attempts = ?", event.ID, models.EventStatusPending, event.Attempts).
			Updates(map[string]interface{}{
				"attempts": event.Attempts + 1,
				"run_at":   leaseUntil,
			})
		if result.Error != nil {
			return claimed, result.Error
		}
		if result.RowsAffected == 1 {
			event.Attempts++
			event.RunAt = leaseUntil
			claimed = append(claimed, event)
		}
	}
	return claimed, nil
}

func (r *EventRepo) MarkDone(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.EventStatusDone,
			"processed_at": at,
			"last_error":   nil,
		}).Error
}

// Reschedule records a failed attempt and makes the event due again at runAt.
func (r *EventRepo) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"run_at":     runAt,
			"last_error": lastError,
		}).Error
}

func (r *EventRepo) MarkFailed(ctx context.Context, id uuid.UUID, at time.Time, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.EventStatusFailed,
			"processed_at": at,
			"last_error":   lastError,
		}).Error
}

func (r *EventRepo) CountByStatus(ctx context.Context, status models.EventStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
