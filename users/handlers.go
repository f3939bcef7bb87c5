package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
)

// Handlers exposes account operations over HTTP. All routes require a valid
// bearer token; the target account is always the authenticated caller's own.
type Handlers struct {
	service *Service
}

// NewHandlers creates new account Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleGetMe godoc
// @Summary Get current user's profile
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} store.User
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /accounts/me [get]
func (h *Handlers) HandleGetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("User ID not found in context", nil))
			return
		}

		user, err := h.service.GetProfile(r.Context(), auth.ActorFromContext(r.Context()), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdateAccount godoc
// @Summary Update current user's account
// @Description Partially updates the account: only supplied fields change. A supplied password must satisfy the password policy.
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param updateBody body UpdateAccountRequest true "Fields to update"
// @Success 200 {object} store.User
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or weak password"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Router /accounts [put]
func (h *Handlers) HandleUpdateAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("User ID not found in context", nil))
			return
		}

		var req UpdateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Name == nil && req.Password == nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("No fields provided for update", nil))
			return
		}

		user, err := h.service.UpdateAccount(r.Context(), auth.ActorFromContext(r.Context()), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleDeleteAccount godoc
// @Summary Delete current user's account
// @Description Deletes the account and, atomically, all of the user's posts and every dependent like. Reports the removed counts.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DeleteAccountResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /accounts [delete]
func (h *Handlers) HandleDeleteAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("User ID not found in context", nil))
			return
		}

		resp, err := h.service.DeleteAccount(r.Context(), auth.ActorFromContext(r.Context()), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleGetStats godoc
// @Summary Get current user's statistics
// @Description Returns the user's post count, like count and total impact.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Router /accounts/me/stats [get]
func (h *Handlers) HandleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("User ID not found in context", nil))
			return
		}

		stats, err := h.service.GetStats(r.Context(), auth.ActorFromContext(r.Context()), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, stats)
	}
}
