package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstructorsCarryKind(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("project not found")))
	assert.True(t, IsForbidden(NewForbiddenError("not the owner")))
	assert.True(t, IsConflict(NewConflictError("duplicate")))
	assert.True(t, IsUnauthorized(NewNotAdminError()))
	assert.True(t, IsUnauthorized(NewInvalidTokenError()))
	assert.True(t, IsBadRequest(NewBadRequestError("bad")))
	assert.False(t, IsNotFound(NewConflictError("duplicate")))

	assert.Equal(t, "project not found", NewNotFoundError("project not found").Error())
}

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := NewInvalidFieldError("roles", "at least one role is required")
	assert.Equal(t, "invalid field: Invalid field roles: at least one role is required", err.Error())
	assert.Equal(t, "roles", err.Field)
	assert.True(t, IsInvalidFieldError(err))
}

func TestGetFullErrorFollowsCauses(t *testing.T) {
	inner := NewInternalErrorWithCause("query failed", errors.New("connection reset"))
	outer := NewInternalErrorWithCause("create project", inner)
	assert.Equal(t, "create project -> query failed -> connection reset", outer.GetFullError())
}

func TestNewDatabaseErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
	}{
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_slug"`), http.StatusConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: blog_posts.slug"), http.StatusConflict},
		{"foreign key", errors.New("violates foreign key constraint"), http.StatusBadRequest},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{"other", errors.New("syntax error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "project", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}

	conflict := NewDatabaseError("create", "contact request", gorm.ErrDuplicatedKey)
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsAlreadyExists(conflict))
}

func TestNewDatabaseErrorKeepsApiErr(t *testing.T) {
	original := NewForbiddenError("not the owner")
	assert.Same(t, original, NewDatabaseError("update", "project", original))
}
