package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zhouzirui/bloomspace/backend/pkg/utils"
)

// UserHeader carries the identity asserted by the upstream gateway.
const UserHeader = "X-User-ID"

const maxUserIDLength = 128

type ctxKey struct{}

// RequireUser rejects requests without a usable identity header and stores the id in the context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if len(userID) > maxUserIDLength {
			utils.RespondError(w, http.StatusBadRequest, "user id too long")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the identity stored by RequireUser.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
