package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
)

const (
	DefaultMaxAttempts = 5
	DefaultEventBatch  = 20
	DefaultEventLease  = 2 * time.Minute
)

// EventBus publishes events into the outbox table.
type EventBus struct {
	repo *database.EventRepo
}

func NewEventBus(repo *database.EventRepo) EventBus {
	return EventBus{repo: repo}
}

func (b EventBus) Publish(ctx context.Context, name string, payload any) (*models.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.NewEventPayloadError(name, err)
	}
	event := &models.Event{Name: name, Payload: data}
	if err := b.repo.Add(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

type EventHandler func(ctx context.Context, event *models.Event) error

// EventWorker drains due outbox events on a cron schedule.
type EventWorker struct {
	repo        *database.EventRepo
	handlers    map[string]EventHandler
	maxAttempts int
	batchSize   int
	lease       time.Duration
	backoffBase time.Duration
	now         func() time.Time
	logger      zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

type WorkerOption func(*EventWorker)

func WithMaxAttempts(n int) WorkerOption {
	return func(w *EventWorker) { w.maxAttempts = n }
}

// WithBackoff sets the first retry delay; each later retry doubles it.
func WithBackoff(base time.Duration) WorkerOption {
	return func(w *EventWorker) { w.backoffBase = base }
}

func WithClock(now func() time.Time) WorkerOption {
	return func(w *EventWorker) { w.now = now }
}

func NewEventWorker(repo *database.EventRepo, opts ...WorkerOption) *EventWorker {
	w := &EventWorker{
		repo:        repo,
		handlers:    make(map[string]EventHandler),
		maxAttempts: DefaultMaxAttempts,
		batchSize:   DefaultEventBatch,
		lease:       DefaultEventLease,
		backoffBase: 10 * time.Second,
		now:         time.Now,
		logger:      log.With().Str("service", "eventWorker").Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *EventWorker) Register(name string, handler EventHandler) {
	w.handlers[name] = handler
}

func (w *EventWorker) backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return w.backoffBase << (attempts - 1)
}

// ProcessPending handles one batch of due events and returns how many were
// claimed. Handler failures are recorded on the event, not returned.
func (w *EventWorker) ProcessPending(ctx context.Context) (int, error) {
	events, err := w.repo.ClaimDue(ctx, w.now(), w.batchSize, w.lease)
	if err != nil {
		return len(events), err
	}

	for _, event := range events {
		w.process(ctx, event)
	}
	return len(events), nil
}

func (w *EventWorker) process(ctx context.Context, event *models.Event) {
	logger := w.logger.With().Str("eventId", event.ID.String()).Str("event", event.Name).Int("attempt", event.Attempts).Logger()

	handler, ok := w.handlers[event.Name]
	if !ok {
		err := errs.NewUnknownEventError(event.Name)
		logger.Error().Err(err).Msg("No handler registered")
		w.record(ctx, logger, w.repo.MarkFailed(ctx, event.ID, w.now(), err.Error()))
		return
	}

	err := handler(ctx, event)
	if err == nil {
		w.record(ctx, logger, w.repo.MarkDone(ctx, event.ID, w.now()))
		logger.Info().Msg("Event processed")
		return
	}

	if event.Attempts >= w.maxAttempts {
		logger.Error().Err(err).Msg("Event failed permanently")
		w.record(ctx, logger, w.repo.MarkFailed(ctx, event.ID, w.now(), err.Error()))
		return
	}

	retryAt := w.now().Add(w.backoff(event.Attempts))
	logger.Warn().Err(err).Time("retryAt", retryAt).Msg("Event failed, will retry")
	w.record(ctx, logger, w.repo.Reschedule(ctx, event.ID, retryAt, err.Error()))
}

func (w *EventWorker) record(ctx context.Context, logger zerolog.Logger, err error) {
	if err != nil {
		logger.Error().Err(err).Msg("Failed to update event status")
	}
}

// Start runs ProcessPending on schedule, e.g. "@every 5s". Runs never overlap.
func (w *EventWorker) Start(schedule string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		if _, err := w.ProcessPending(context.Background()); err != nil {
			w.logger.Error().Err(err).Msg("Processing outbox failed")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	w.cron = c
	w.logger.Info().Str("schedule", schedule).Msg("Event worker started")
	return nil
}

// Stop halts the schedule and waits for a running batch to finish.
func (w *EventWorker) Stop(ctx context.Context) {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
