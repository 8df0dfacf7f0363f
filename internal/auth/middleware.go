package auth

import (
	"context"
	"net/http"
	"strings"

	"kcal/internal/http/respond"
)

type ctxKey string

const subjectKey ctxKey = "subject"

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok
}

// CanAccess reports whether the caller may touch userID's data.
// Requests that went through no auth middleware may access everything.
func CanAccess(ctx context.Context, userID string) bool {
	sub, ok := SubjectFromContext(ctx)
	return !ok || sub == userID
}

func RequireAuth(jwtSvc *JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")

			sub, err := jwtSvc.Verify(token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
