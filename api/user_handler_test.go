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

func TestAddDetailsCompletesProfile(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{Email: "new@example.com"}
	require.NoError(t, env.db.UserRepo().Add(context.Background(), user))

	rec := env.do(t, http.MethodPost, "/user/details", map[string]any{
		"fullName":       "Noa Levi",
		"profilePicture": "https://files.yazameet.test/noa.png",
		"year":           "SECONDYEAR",
		"roles":          []string{"DEVELOPER", "DATA"},
	}, env.token(t, user))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.db.UserRepo().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Noa Levi", stored.Name)
	assert.True(t, stored.DetailsCompleted)
	require.NotNil(t, stored.Year)
	assert.Equal(t, models.YearSecond, *stored.Year)
	assert.ElementsMatch(t, []models.Role{models.RoleDeveloper, models.RoleData}, []models.Role(stored.Roles))
}

func TestAddDetailsValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "new@example.com")
	valid := func() map[string]any {
		return map[string]any{
			"fullName":       "Noa Levi",
			"profilePicture": "https://files.yazameet.test/noa.png",
			"year":           "SECONDYEAR",
			"roles":          []string{"DEVELOPER"},
		}
	}

	for field, value := range map[string]any{
		"fullName":       "",
		"profilePicture": "",
		"year":           "FIFTHYEAR",
		"roles":          []string{},
	} {
		body := valid()
		body[field] = value
		rec := env.do(t, http.MethodPost, "/user/details", body, env.token(t, user))
		require.Equal(t, http.StatusBadRequest, rec.Code, field)
		assert.Equal(t, field, decodeBody[ErrorResponse](t, rec).Field)
	}
}

func TestUpdateDetailsKeepsImage(t *testing.T) {
	env := newTestEnv(t)
	image := "https://files.yazameet.test/old.png"
	user := &models.User{Email: "member@example.com", Image: &image, DetailsCompleted: true}
	require.NoError(t, env.db.UserRepo().Add(context.Background(), user))

	rec := env.do(t, http.MethodPut, "/user/details", map[string]any{
		"fullName": "Renamed",
		"year":     "GRADUATE",
		"roles":    []string{"PRODUCT"},
		"phone":    "+972501234567",
	}, env.token(t, user))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.db.UserRepo().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	require.NotNil(t, stored.Image)
	assert.Equal(t, image, *stored.Image)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "+972501234567", *stored.Phone)

	rec = env.do(t, http.MethodPut, "/user/details", map[string]any{
		"fullName": "Renamed",
		"year":     "GRADUATE",
		"roles":    []string{"PRODUCT"},
		"phone":    "not-a-phone",
	}, env.token(t, user))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCurrentUserReportsAdmin(t *testing.T) {
	env := newTestEnv(t)
	member := env.createUser(t, "member@example.com")
	admin := env.createUser(t, "Admin@Yazameet.test")

	rec := env.do(t, http.MethodGet, "/user/me", nil, env.token(t, member))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[CurrentUserResponse](t, rec).IsAdmin)

	rec = env.do(t, http.MethodGet, "/user/me", nil, env.token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[CurrentUserResponse](t, rec).IsAdmin)
}

func TestGetLatestUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "done@example.com")
	require.NoError(t, env.db.UserRepo().Add(context.Background(), &models.User{Email: "pending@example.com"}))

	rec := env.do(t, http.MethodGet, "/users/latest", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	profiles := decodeBody[[]models.PublicProfile](t, rec)
	require.Len(t, profiles, 1)
	assert.Equal(t, "done@example.com", profiles[0].Email)

	rec = env.do(t, http.MethodGet, "/users/latest?limit=51", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPublicProfile(t *testing.T) {
	env := newTestEnv(t)
	phone := "+972501234567"
	user := &models.User{Email: "member@example.com", Name: "Member", Phone: &phone}
	require.NoError(t, env.db.UserRepo().Add(context.Background(), user))

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/profile/%s", user.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Member", decodeBody[models.PublicProfile](t, rec).Name)
	assert.NotContains(t, rec.Body.String(), phone)

	rec = env.do(t, http.MethodGet, "/profile/9b2f4a0e-6d7c-4f1a-9d55-000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/profile/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
