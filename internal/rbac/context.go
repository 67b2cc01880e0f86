package rbac

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

type contextKey struct{ name string }

var userIDKey = contextKey{name: "rbac.user_id"}

// Identify reads the X-User-ID header set by the fronting gateway and
// stores the acting user in the request context. Requests without the
// header pass through; authorization middleware rejects them later.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				r = r.WithContext(WithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying the acting user.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the acting user or zero when absent.
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}
