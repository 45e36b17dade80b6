package httpmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/opencircle/social-service/internal/security"
	"github.com/opencircle/social-service/pkg/httputil"
)

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// Auth requires a valid Bearer token and puts the resolved user id on the
// request context. REST treats auth failure as 401; only the chat socket
// downgrades to unauthenticated.
func Auth(verifier security.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				httputil.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := verifier.VerifyToken(strings.TrimSpace(auth[7:]))
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromCtx(ctx context.Context) string {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
