package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

const (
	testAdminEmail  = "admin@yazameet.test"
	testFrontendURL = "https://yazameet.test"
	testBackendURL  = "https://api.yazameet.test"
)

type fakeMailer struct {
	mu      sync.Mutex
	sent    []services.Email
	batches [][]services.Email
	err     error
}

func (m *fakeMailer) Send(ctx context.Context, email services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) SendBatch(ctx context.Context, emails []services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, emails)
	return nil
}

func (m *fakeMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	subjects := make([]string, 0, len(m.sent))
	for _, e := range m.sent {
		subjects = append(subjects, e.Subject)
	}
	return subjects
}

type testEnv struct {
	db       database.Database
	handler  http.Handler
	mailer   *fakeMailer
	sessions *services.SessionManager
}

type envOption func(cfg config.Config, svc *Services)

func withRateLimit(limit int) envOption {
	return func(cfg config.Config, svc *Services) {
		svc.RateLimiter = services.NewMemoryRateLimiter(limit, time.Minute)
	}
}

func withoutStorage() envOption {
	return func(cfg config.Config, svc *Services) {
		svc.Storage = nil
	}
}

func setupTestDB(t *testing.T) database.Database {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))
	return database.New(db)
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	db := setupTestDB(t)

	cfg := config.Config{
		"ADMIN_EMAIL":      testAdminEmail,
		"FRONTEND_URL":     testFrontendURL,
		"BACKEND_URL":      testBackendURL,
		"ACCEPTED_ORIGINS": testFrontendURL,
		"LOG_REQUESTS":     "false",
	}

	templates, err := services.NewEmailTemplates(testFrontendURL, testAdminEmail)
	require.NoError(t, err)
	mailer := &fakeMailer{}

	storage, err := services.NewS3Storage(services.S3Options{
		AccessKey: "AKIDTEST",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "uploads",
		Endpoint:  "https://s3.yazameet.test",
	})
	require.NoError(t, err)

	svc := Services{
		Sessions:    services.NewSessionManager("test-secret", time.Hour),
		OAuth:       services.OAuthProviders{},
		Notifier:    services.NewNotifier(mailer, nil, templates, testFrontendURL),
		Storage:     storage,
		RateLimiter: services.NewMemoryRateLimiter(1000, time.Minute),
	}
	for _, opt := range opts {
		opt(cfg, &svc)
	}

	return &testEnv{
		db:       db,
		handler:  newRouter(db, withConfig(cfg), withServices(svc)),
		mailer:   mailer,
		sessions: svc.Sessions,
	}
}

func (e *testEnv) createUser(t *testing.T, email string, roles ...models.Role) *models.User {
	user := &models.User{Name: email, Email: email, Roles: roles, DetailsCompleted: true}
	require.NoError(t, e.db.UserRepo().Add(context.Background(), user))
	return user
}

func (e *testEnv) createProject(t *testing.T, owner *models.User, name string, roles ...models.Role) *models.Project {
	project := &models.Project{
		Name:        name,
		Description: name + " description",
		RolesNeeded: roles,
		Types:       models.EnumList[models.ProjectType]{models.ProjectTypeStartup},
		CreatedByID: owner.ID,
	}
	require.NoError(t, e.db.ProjectRepo().Add(context.Background(), project))
	return project
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	token, _, err := e.sessions.Issue(*user)
	require.NoError(t, err)
	return token
}

// do sends body as JSON. An empty token sends an anonymous request.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
