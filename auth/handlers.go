package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/user/microblog-go/apperror"
)

var validate = validator.New()

// Handlers exposes the auth service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register a new account
// @Description Creates a new user account. The password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit and a special character.
// @Tags accounts
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} store.User "Account created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or weak password"
// @Failure 409 {object} apperror.ErrorResponse "Email already registered"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /accounts [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("name, email, and password are required and email must be valid", err))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Authenticates a user and returns a bearer token.
// @Tags accounts
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.TokenResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Incorrect email or password"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /accounts/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			WriteError(w, r, apperror.NewValidationError("email and password are required", err))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// WriteJSON serializes data to JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standardized error response. Errors
// that are not AppErrors are wrapped as internal errors so callers always
// see a consistent shape.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
