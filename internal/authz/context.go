package authz

import (
	"context"
	"net/http"

	"github.com/hourlyx/hourlyx-api/internal/models"
)

type contextKey string

const (
	userIDKey        contextKey = "user_id"
	emailKey         contextKey = "email"
	emailVerifiedKey contextKey = "email_verified"
	orgIDKey         contextKey = "organization_id"
	roleKey          contextKey = "role"
)

// WithIdentity stores the authenticated caller on the context. The
// organization id and role are empty until the identity has a membership.
func WithIdentity(ctx context.Context, userID, email string, emailVerified bool, orgID string, role models.Role) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	if email != "" {
		ctx = context.WithValue(ctx, emailKey, email)
	}
	ctx = context.WithValue(ctx, emailVerifiedKey, emailVerified)
	if orgID != "" {
		ctx = context.WithValue(ctx, orgIDKey, orgID)
	}
	if models.IsValidRole(role) {
		ctx = context.WithValue(ctx, roleKey, role)
	}
	return ctx
}

func UserIDFromRequest(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}

func EmailFromRequest(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(emailKey).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

func EmailVerifiedFromRequest(r *http.Request) bool {
	verified, ok := r.Context().Value(emailVerifiedKey).(bool)
	return ok && verified
}

func OrgIDFromRequest(r *http.Request) (string, bool) {
	oid, ok := r.Context().Value(orgIDKey).(string)
	if !ok || oid == "" {
		return "", false
	}
	return oid, true
}

func RoleFromRequest(r *http.Request) (models.Role, bool) {
	role, ok := r.Context().Value(roleKey).(models.Role)
	if !ok || !models.IsValidRole(role) {
		return "", false
	}
	return role, true
}
