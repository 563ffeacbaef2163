package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

func projectIDs(projects []*models.Project) []uint {
	ids := make([]uint, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProjectRepoFindPage(t *testing.T) {
	d := setupTestDB(t)
	repo := d.ProjectRepo()
	ctx := context.Background()
	owner := createUser(t, d, "owner@example.com")

	alpha := createProject(t, d, owner, "Alpha Robotics", "Autonomous rovers",
		[]models.ProjectType{models.ProjectTypeStartup}, []models.Role{models.RoleDeveloper})
	beta := createProject(t, d, owner, "Beta", "A study on CAMPUS food waste",
		[]models.ProjectType{models.ProjectTypeResearch}, []models.Role{models.RoleResearch, models.RoleData})
	gamma := createProject(t, d, owner, "Gamma", "Hackathon team",
		[]models.ProjectType{models.ProjectTypeHackathon, models.ProjectTypeStartup}, []models.Role{models.RoleDesigner})

	t.Run("NewestFirstWithCursor", func(t *testing.T) {
		page, next, err := repo.FindPage(ctx, ProjectFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []uint{gamma.ID, beta.ID}, projectIDs(page))
		require.NotNil(t, next)
		assert.Equal(t, alpha.ID, *next)

		page, next, err = repo.FindPage(ctx, ProjectFilter{Limit: 2, Cursor: next})
		require.NoError(t, err)
		assert.Equal(t, []uint{alpha.ID}, projectIDs(page))
		assert.Nil(t, next)
	})

	t.Run("CursorIsInclusive", func(t *testing.T) {
		cursor := beta.ID
		page, _, err := repo.FindPage(ctx, ProjectFilter{Limit: 10, Cursor: &cursor})
		require.NoError(t, err)
		assert.Equal(t, []uint{beta.ID, alpha.ID}, projectIDs(page))
	})

	t.Run("UnknownCursorIsEmpty", func(t *testing.T) {
		cursor := uint(9999)
		page, next, err := repo.FindPage(ctx, ProjectFilter{Limit: 10, Cursor: &cursor})
		require.NoError(t, err)
		assert.Empty(t, page)
		assert.Nil(t, next)
	})

	t.Run("QueryIsCaseInsensitiveOverNameOrDescription", func(t *testing.T) {
		page, _, err := repo.FindPage(ctx, ProjectFilter{Limit: 10, Query: "campus"})
		require.NoError(t, err)
		assert.Equal(t, []uint{beta.ID}, projectIDs(page))

		page, _, err = repo.FindPage(ctx, ProjectFilter{Limit: 10, Query: "ALPHA"})
		require.NoError(t, err)
		assert.Equal(t, []uint{alpha.ID}, projectIDs(page))
	})

	t.Run("TypesHaveSome", func(t *testing.T) {
		page, _, err := repo.FindPage(ctx, ProjectFilter{Limit: 10, Types: []models.ProjectType{models.ProjectTypeStartup}})
		require.NoError(t, err)
		assert.Equal(t, []uint{gamma.ID, alpha.ID}, projectIDs(page))
	})

	t.Run("RolesHaveSomeCombinedWithQuery", func(t *testing.T) {
		page, _, err := repo.FindPage(ctx, ProjectFilter{
			Limit: 10,
			Roles: []models.Role{models.RoleData, models.RoleDesigner},
			Query: "a",
		})
		require.NoError(t, err)
		assert.Equal(t, []uint{gamma.ID, beta.ID}, projectIDs(page))

		page, _, err = repo.FindPage(ctx, ProjectFilter{
			Limit: 10,
			Roles: []models.Role{models.RoleData, models.RoleDesigner},
			Query: "rovers",
		})
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("PreloadsOwner", func(t *testing.T) {
		page, _, err := repo.FindPage(ctx, ProjectFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, owner.Email, page[0].CreatedBy.Email)
	})
}

func TestProjectRepoCollaboratorsAndDelete(t *testing.T) {
	d := setupTestDB(t)
	repo := d.ProjectRepo()
	ctx := context.Background()
	owner := createUser(t, d, "owner@example.com")
	member := createUser(t, d, "member@example.com", models.RoleDeveloper)
	project := createProject(t, d, owner, "Solar", "Panels", nil, []models.Role{models.RoleDeveloper})

	require.NoError(t, repo.AddCollaborator(ctx, project.ID, member.ID))

	ok, err := repo.IsCollaborator(ctx, project.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := repo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	all := loaded.AllCollaborators()
	require.Len(t, all, 2)
	assert.Equal(t, owner.ID, all[0].ID)
	assert.Equal(t, member.ID, all[1].ID)

	require.NoError(t, d.ContactRequestRepo().Add(ctx, &models.ContactRequest{
		ProjectID: project.ID,
		UserID:    member.ID,
		Purpose:   models.ContactPurposeJoin,
		Roles:     models.EnumList[models.Role]{models.RoleDeveloper},
		Notes:     "let me in",
	}))

	require.NoError(t, repo.Delete(ctx, project.ID))

	_, err = repo.FindByID(ctx, project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	requests, err := d.ContactRequestRepo().FindByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)

	ok, err = repo.IsCollaborator(ctx, project.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.Delete(ctx, project.ID), gorm.ErrRecordNotFound)
}

func TestProjectRepoUpdateAndOwner(t *testing.T) {
	d := setupTestDB(t)
	repo := d.ProjectRepo()
	ctx := context.Background()
	owner := createUser(t, d, "owner@example.com")
	other := createUser(t, d, "other@example.com")

	first := createProject(t, d, owner, "First", "one", nil, nil)
	second := createProject(t, d, owner, "Second", "two", nil, nil)
	createProject(t, d, other, "Elsewhere", "three", nil, nil)

	mine, err := repo.FindByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, projectIDs(mine))

	first.Name = "Renamed"
	first.RolesNeeded = models.EnumList[models.Role]{models.RoleFinance}
	require.NoError(t, repo.Update(ctx, first))

	loaded, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.Equal(t, models.EnumList[models.Role]{models.RoleFinance}, loaded.RolesNeeded)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestProjectRepoQueryMatchesWildcardsLiterally(t *testing.T) {
	d := setupTestDB(t)
	repo := d.ProjectRepo()
	ctx := context.Background()
	owner := createUser(t, d, "owner@example.com")

	renewable := createProject(t, d, owner, "100% Renewable", "Solar campus", nil, nil)
	lab := createProject(t, d, owner, "Data_Lab", "Analytics", nil, nil)
	createProject(t, d, owner, "Datalab Classic", "Nothing special", nil, nil)

	tests := []struct {
		query string
		want  []uint
	}{
		{"%", []uint{renewable.ID}},
		{"0% r", []uint{renewable.ID}},
		{"_", []uint{lab.ID}},
		{"a_l", []uint{lab.ID}},
		{`\`, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, _, err := repo.FindPage(ctx, ProjectFilter{Limit: 10, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, projectIDs(page))
		})
	}
}
