package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

func preflight(env *testEnv, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	rec := preflight(env, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = preflight(env, testFrontendURL)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testFrontendURL, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSIgnoresSimpleRequests(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)
}

func TestMetricsExposeRequestCounts(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/health", nil, "")

	rec := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `yazameet_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "member@example.com")

	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	req.AddCookie(&http.Cookie{Name: services.SessionCookieName, Value: env.token(t, user)})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, user.ID, decodeBody[CurrentUserResponse](t, rec).ID)
}

func TestDeletedUserSessionRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, &models.User{ID: uuid.New(), Email: "ghost@example.com"})

	rec := env.do(t, http.MethodGet, "/user/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
