// Package auth handles registration, login, session tokens and the bearer
// middleware protecting the rest of the API.
package auth

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required" example:"Valid1!pass"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required" example:"Valid1!pass"`
}

// TokenResponse is returned on successful login. The token is presented by
// the caller as a bearer credential on every subsequent request.
type TokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"1800"` // seconds until expiry
}
