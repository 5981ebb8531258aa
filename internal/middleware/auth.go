package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user stored by VerifyJWT.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*models.User)
	return user, ok && user != nil
}

// VerifyJWT reads the access token from the accessToken cookie or the
// Authorization bearer header and rejects the request with 401 unless it
// resolves to a user.
func VerifyJWT(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessToken(r)
			if token == "" {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized request")
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token
	}
	return ""
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := strings.TrimSpace(value[len(bearer):])
	return token, token != ""
}
