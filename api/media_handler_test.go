package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPresignedURL(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "member@example.com")

	rec := env.do(t, http.MethodPost, "/media/presigned-url", map[string]any{
		"fileName": "cv.pdf",
		"fileType": "application/pdf",
	}, env.token(t, user))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[PresignedURLResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.Key, user.ID.String()+"/"))
	assert.Equal(t, "https://s3.yazameet.test/uploads/"+resp.Key, resp.FileURL)

	uploadURL, err := url.Parse(resp.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "60", uploadURL.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, uploadURL.Query().Get("X-Amz-Signature"))
	// The declared type is signed, so S3 refuses an upload with a different one
	assert.Contains(t, uploadURL.Query().Get("X-Amz-SignedHeaders"), "content-type")

	uploads, err := env.db.UploadRepo().FindByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, resp.Key, uploads[0].Key)
	assert.Equal(t, "application/pdf", uploads[0].ContentType)
}

func TestGetPresignedURLValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.createUser(t, "member@example.com"))

	rec := env.do(t, http.MethodPost, "/media/presigned-url", map[string]any{"fileName": "cv.pdf"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fileType", decodeBody[ErrorResponse](t, rec).Field)

	rec = env.do(t, http.MethodPost, "/media/presigned-url", map[string]any{"fileName": "cv.pdf", "fileType": "application/pdf"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPresignedURLWithoutStorage(t *testing.T) {
	env := newTestEnv(t, withoutStorage())
	token := env.token(t, env.createUser(t, "member@example.com"))

	rec := env.do(t, http.MethodPost, "/media/presigned-url", map[string]any{"fileName": "cv.pdf", "fileType": "application/pdf"}, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetPresignedURLRateLimited(t *testing.T) {
	env := newTestEnv(t, withRateLimit(1))
	first := env.token(t, env.createUser(t, "first@example.com"))
	second := env.token(t, env.createUser(t, "second@example.com"))
	body := map[string]any{"fileName": "cv.pdf", "fileType": "application/pdf"}

	rec := env.do(t, http.MethodPost, "/media/presigned-url", body, first)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/media/presigned-url", body, first)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Limits are per user
	rec = env.do(t, http.MethodPost, "/media/presigned-url", body, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}
