package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/models"
)

func setupTestDB(t *testing.T) database.Database {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	return database.New(db)
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []Email
	batches [][]Email
	err     error
}

func (m *fakeMailer) Send(ctx context.Context, email Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) SendBatch(ctx context.Context, emails []Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, emails)
	return nil
}

type sentMessage struct {
	to   string
	body string
}

type fakeMessenger struct {
	messages []sentMessage
	err      error
}

func (m *fakeMessenger) Send(ctx context.Context, to, body string) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, sentMessage{to: to, body: body})
	return nil
}

func newTestNotifier(t *testing.T, mailer Mailer, messenger Messenger) *Notifier {
	templates, err := NewEmailTemplates("https://yazameet.test", "support@yazameet.test")
	require.NoError(t, err)
	return NewNotifier(mailer, messenger, templates, "https://yazameet.test")
}
