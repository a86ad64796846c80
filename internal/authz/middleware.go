package authz

import (
	"net/http"

	"github.com/hourlyx/hourlyx-api/internal/models"
)

// RequireManagement ensures the requester is a management member of an
// organization.
func RequireManagement(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := RoleFromRequest(r)
		if !ok || role != models.RoleManagement {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}
		if _, ok := OrgIDFromRequest(r); !ok {
			http.Error(w, "organization context missing", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMember ensures the requester belongs to an organization, in any
// role.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := OrgIDFromRequest(r); !ok {
			http.Error(w, "organization context missing", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
