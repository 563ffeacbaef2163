package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazameet/yazameet-backend/models"
)

func TestBlogWritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	member := env.createUser(t, "member@example.com")
	body := map[string]any{"title": "Hello", "content": "World", "slug": "hello"}

	rec := env.do(t, http.MethodPost, "/admin/blog-post", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/blog-post", body, env.token(t, member))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/stats", nil, env.token(t, member))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBlogPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, testAdminEmail)
	token := env.token(t, admin)

	rec := env.do(t, http.MethodPost, "/admin/blog-post", map[string]any{
		"title":   "Launch week",
		"content": "We are live",
		"slug":    "launch-week",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decodeBody[models.BlogPost](t, rec)
	assert.False(t, draft.Published)

	// Drafts stay hidden from the public
	rec = env.do(t, http.MethodGet, "/blog/post/launch-week", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodGet, "/blog/post/launch-week", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/blog/posts", nil, "")
	assert.Empty(t, decodeBody[[]models.BlogPost](t, rec))

	rec = env.do(t, http.MethodPost, "/admin/blog-post", map[string]any{
		"title":   "Duplicate",
		"content": "Same slug",
		"slug":    "launch-week",
	}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	path := fmt.Sprintf("/admin/blog-post/%d", draft.ID)
	rec = env.do(t, http.MethodPut, path, map[string]any{
		"title":     "Launch week",
		"content":   "We are live",
		"slug":      "launch-week",
		"published": true,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[models.BlogPost](t, rec).Published)

	rec = env.do(t, http.MethodGet, "/blog/post/launch-week", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "We are live", decodeBody[models.BlogPost](t, rec).Content)
	rec = env.do(t, http.MethodGet, "/blog/posts", nil, "")
	assert.Len(t, decodeBody[[]models.BlogPost](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/admin/blog-posts", nil, token)
	assert.Len(t, decodeBody[[]models.BlogPost](t, rec), 1)

	rec = env.do(t, http.MethodDelete, path, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodPut, path, map[string]any{"title": "t", "content": "c", "slug": "s"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogPostValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.createUser(t, testAdminEmail))

	rec := env.do(t, http.MethodPost, "/admin/blog-post", map[string]any{"title": "t", "content": "c"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "slug", decodeBody[ErrorResponse](t, rec).Field)
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, testAdminEmail)
	owner := env.createUser(t, "owner@example.com")
	requester := env.createUser(t, "requester@example.com")
	project := env.createProject(t, owner, "Robotics Lab")
	env.createProject(t, owner, "Poster Design")
	require.NoError(t, env.db.BlogPostRepo().Add(ctx, &models.BlogPost{Title: "t", Content: "c", Slug: "s"}))
	submitRequest(t, env, project, requester)

	rec := env.do(t, http.MethodGet, "/admin/stats", nil, env.token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatsResponse{
		UsersCount:           3,
		ProjectsCount:        2,
		PostsCount:           1,
		PendingRequestsCount: 1,
	}, decodeBody[StatsResponse](t, rec))
}
