package api

import (
	"context"
	"errors"

	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

type keyType string

const (
	userKey    keyType = "user"
	claimsKey  keyType = "claims"
	isAdminKey keyType = "isAdmin"
)

// ctxWithSession stores the signed-in user and their claims
func ctxWithSession(ctx context.Context, user *models.User, claims *services.SessionClaims, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, isAdminKey, isAdmin)
}

// ctxGetUser retrieves the signed-in user from the context
func ctxGetUser(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok || user == nil {
		return nil, errors.New("no user in context")
	}
	return user, nil
}

func ctxIsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(isAdminKey).(bool)
	return isAdmin
}

func ctxGetClaims(ctx context.Context) (*services.SessionClaims, error) {
	claims, ok := ctx.Value(claimsKey).(*services.SessionClaims)
	if !ok || claims == nil {
		return nil, errors.New("no session claims in context")
	}
	return claims, nil
}
