package http

import (
	"encoding/json"
	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error kinds to status codes. Unknown errors are logged
// and reported without detail.
func writeError(w nethttp.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case apperr.IsNotFound(err):
		nethttp.Error(w, err.Error(), nethttp.StatusNotFound)
	case apperr.IsForbidden(err):
		nethttp.Error(w, err.Error(), nethttp.StatusForbidden)
	case apperr.IsConflict(err):
		nethttp.Error(w, err.Error(), nethttp.StatusConflict)
	case apperr.IsInvalid(err):
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
	default:
		log.Error("request failed", zap.Error(err))
		nethttp.Error(w, "internal error", nethttp.StatusInternalServerError)
	}
}

func decode(w nethttp.ResponseWriter, r *nethttp.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
		return false
	}
	return true
}

// actor is only called behind JWTMiddleware.
func actor(r *nethttp.Request) rbac.Actor {
	a, _ := rbac.ActorFromContext(r.Context())
	return a
}

// optionalActor is nil for anonymous callers.
func optionalActor(r *nethttp.Request) *rbac.Actor {
	a, ok := rbac.ActorFromContext(r.Context())
	if !ok {
		return nil
	}
	return &a
}
