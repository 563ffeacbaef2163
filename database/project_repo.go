package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazameet/yazameet-backend/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// ProjectFilter narrows a page of projects. Types and Roles match when the
// project holds at least one of the listed values.
type ProjectFilter struct {
	Limit  int
	Cursor *uint
	Query  string
	Types  []models.ProjectType
	Roles  []models.Role
}

func (r *ProjectRepo) withMembers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("CreatedBy").Preload("Collaborators")
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindPage returns up to filter.Limit projects, newest first, starting at
// the cursor project inclusive. next is the id of the first project of the
// following page, or nil on the last page.
func (r *ProjectRepo) FindPage(ctx context.Context, filter ProjectFilter) (projects []*models.Project, next *uint, err error) {
	q := r.withMembers(ctx)

	if filter.Cursor != nil {
		var cursor models.Project
		err := r.db.WithContext(ctx).Select("id", "created_at").First(&cursor, *filter.Cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*models.Project{}, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		q = q.Where("(created_at < ? OR (created_at = ? AND id <= ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if len(filter.Types) > 0 {
		q = q.Where(anyEnumCondition(r.db, "types", filter.Types))
	}
	if len(filter.Roles) > 0 {
		q = q.Where(anyEnumCondition(r.db, "roles_needed", filter.Roles))
	}

	err = q.Order("created_at DESC").Order("id DESC").Limit(filter.Limit + 1).Find(&projects).Error
	if err != nil {
		return nil, nil, err
	}

	if len(projects) > filter.Limit {
		id := projects[filter.Limit].ID
		next = &id
		projects = projects[:filter.Limit]
	}
	return projects, next, nil
}

// FindByID returns a project by its ID with its owner and collaborators
func (r *ProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.withMembers(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByOwner returns the projects a user created, newest first
func (r *ProjectRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.withMembers(ctx).
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error
	return projects, err
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("CreatedBy", "Collaborators").Create(project).Error
}

// Update writes the editable fields of an existing project
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Model(project).
		Select("name", "description", "roles_needed", "types").
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a project together with its contact requests and
// collaborator links.
func (r *ProjectRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ContactRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{ID: id}).Association("Collaborators").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddCollaborator links an existing user to the project. The join row is
// written directly so the user record itself is never upserted.
func (r *ProjectRepo) AddCollaborator(ctx context.Context, projectID uint, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Table("project_collaborators").
		Create(map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		}).Error
}

func (r *ProjectRepo) IsCollaborator(ctx context.Context, projectID uint, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("project_collaborators").
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}
