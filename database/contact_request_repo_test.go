package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazameet/yazameet-backend/models"
)

func newRequest(project *models.Project, user *models.User) *models.ContactRequest {
	return &models.ContactRequest{
		ProjectID: project.ID,
		UserID:    user.ID,
		Purpose:   models.ContactPurposeJoin,
		Roles:     models.EnumList[models.Role]{models.RoleDeveloper},
		Notes:     "I would like to help",
	}
}

func TestContactRequestRepo(t *testing.T) {
	d := setupTestDB(t)
	repo := d.ContactRequestRepo()
	ctx := context.Background()

	owner := createUser(t, d, "owner@example.com")
	stranger := createUser(t, d, "stranger@example.com")
	applicant := createUser(t, d, "applicant@example.com")
	mine := createProject(t, d, owner, "Mine", "owned by owner", nil, nil)
	theirs := createProject(t, d, stranger, "Theirs", "owned by stranger", nil, nil)

	request := newRequest(mine, applicant)
	require.NoError(t, repo.Add(ctx, request))
	require.NoError(t, repo.Add(ctx, newRequest(theirs, applicant)))

	t.Run("DefaultsToPending", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusPending, loaded.Status)
		assert.Equal(t, applicant.Email, loaded.User.Email)
		assert.Equal(t, owner.ID, loaded.Project.CreatedBy.ID)
	})

	t.Run("UniquePerUserAndProject", func(t *testing.T) {
		assert.Error(t, repo.Add(ctx, newRequest(mine, applicant)))
	})

	t.Run("FindExisting", func(t *testing.T) {
		existing, err := repo.FindExisting(ctx, applicant.ID, mine.ID)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, request.ID, existing.ID)

		none, err := repo.FindExisting(ctx, stranger.ID, mine.ID)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("FindForOwnerSkipsOtherOwners", func(t *testing.T) {
		requests, err := repo.FindForOwner(ctx, owner.ID, []uint{mine.ID, theirs.ID})
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, request.ID, requests[0].ID)
		assert.Equal(t, "Mine", requests[0].Project.Name)

		empty, err := repo.FindForOwner(ctx, owner.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("DecideOnlyOnce", func(t *testing.T) {
		pending, err := repo.CountPending(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, pending)

		ok, err := repo.Decide(ctx, request.ID, models.RequestStatusApproved)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Decide(ctx, request.ID, models.RequestStatusRejected)
		require.NoError(t, err)
		assert.False(t, ok)

		loaded, err := repo.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusApproved, loaded.Status)

		pending, err = repo.CountPending(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, pending)
	})

	t.Run("MarkAddedToProject", func(t *testing.T) {
		require.NoError(t, repo.MarkAddedToProject(ctx, mine.ID, applicant.ID))
		loaded, err := repo.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.True(t, loaded.AddedToProject)
	})
}

func TestBlogPostRepo(t *testing.T) {
	d := setupTestDB(t)
	repo := d.BlogPostRepo()
	ctx := context.Background()

	draft := &models.BlogPost{Title: "Draft", Content: "wip", Slug: "draft"}
	live := &models.BlogPost{Title: "Live", Content: "hello", Slug: "live", Published: true}
	require.NoError(t, repo.Add(ctx, draft))
	require.NoError(t, repo.Add(ctx, live))

	published, err := repo.FindPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "live", published[0].Slug)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Error(t, repo.Add(ctx, &models.BlogPost{Title: "Dup", Content: "x", Slug: "live"}))

	draft.Published = true
	draft.Title = "No longer a draft"
	require.NoError(t, repo.Update(ctx, draft))
	bySlug, err := repo.FindBySlug(ctx, "draft")
	require.NoError(t, err)
	assert.True(t, bySlug.Published)
	assert.Equal(t, "No longer a draft", bySlug.Title)

	live.Published = false
	require.NoError(t, repo.Update(ctx, live))
	loaded, err := repo.FindByID(ctx, live.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Published)

	require.NoError(t, repo.Delete(ctx, draft.ID))
	assert.Error(t, repo.Delete(ctx, draft.ID))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
