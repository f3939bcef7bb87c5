package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/config"
)

// Claims is the JWT payload: the subject's user id plus the registered
// claims (expiry, issued-at, not-before). Nothing unsigned is trusted.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, time-bounded session tokens.
// Tokens are stateless: there is no server-side revocation list, and logout
// is client-side token discard. The signing key is loaded once at startup
// and never mutated afterwards.
type TokenService struct {
	secret   []byte
	duration time.Duration
}

// NewTokenService creates a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.JWTSecret),
		duration: cfg.AccessTokenDuration,
	}
}

// Issue produces a signed HS256 token for the given subject, valid until
// now + the configured duration.
func (s *TokenService) Issue(userID int) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.duration)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign token", err)
	}
	return signed, expiresAt, nil
}

// Validate checks a token's structure, signature and expiry, in that order,
// and returns the subject's user id. Every failure mode, whether the token
// is malformed, tampered with or expired, yields the same AuthError kind:
// callers cannot distinguish them, and none of them is ever confused with a
// missing resource. Expiry is strict; clock skew is not compensated.
func (s *TokenService) Validate(tokenString string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, apperror.NewAuthError("Invalid token", err)
	}
	if !token.Valid {
		return 0, apperror.NewAuthError("Invalid token", nil)
	}
	if claims.UserID == 0 {
		return 0, apperror.NewAuthError("Invalid token: user_id claim is missing", nil)
	}
	return claims.UserID, nil
}
