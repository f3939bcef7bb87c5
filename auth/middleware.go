package auth

import (
	"net/http"
	"strings"

	"github.com/user/microblog-go/apperror"
)

// Middleware returns a chi-compatible middleware that authenticates requests
// from the Authorization header. A missing header, a malformed header and an
// invalid token all yield the same authentication-failure outcome, which is
// distinct from any not-found response.
func Middleware(tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			userID, err := tokens.Validate(parts[1])
			if err != nil {
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUserID(r.Context(), userID)))
		})
	}
}
