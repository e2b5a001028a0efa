package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

// AttachRoleFromDB replaces the token's role with the one stored for the
// user, so demotions apply before the token expires.
// allowClaimFallback=true in dev/offline; false in prod.
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := rbac.ActorFromContext(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			var role string
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, actor.ID).Scan(&role)

			switch {
			case err == nil && rbac.Role(role).Valid():
				actor.Role = rbac.Role(role)
				next.ServeHTTP(w, r.WithContext(rbac.WithActor(ctx, actor)))
				return

			case allowClaimFallback && (err == nil || errors.Is(err, sql.ErrNoRows) || isUsersTableMissing(err)):
				// unknown user or stale role value: trust the token in dev
				next.ServeHTTP(w, r)
				return

			default:
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		})
	}
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
