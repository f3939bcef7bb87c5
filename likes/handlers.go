package likes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
)

// Handlers exposes like operations over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates new like Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the like routes on the given router. The router is
// expected to already carry the bearer-token middleware.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/{postID}", h.HandleLike())
	r.Delete("/{postID}", h.HandleUnlike())
}

func postIDFromURL(r *http.Request) (int, error) {
	postID, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil {
		return 0, apperror.NewBadRequestError("invalid post id", err)
	}
	return postID, nil
}

// HandleLike godoc
// @Summary Like a post
// @Description Records a like on a post visible to the caller. Liking the same post twice is a conflict.
// @Tags like
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post id"
// @Success 201 {object} store.Like
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Post is private"
// @Failure 404 {object} apperror.ErrorResponse "Post not found"
// @Failure 409 {object} apperror.ErrorResponse "Already liked"
// @Router /like/{postID} [post]
func (h *Handlers) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := postIDFromURL(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		like, err := h.service.Like(r.Context(), auth.ActorFromContext(r.Context()), postID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, like)
	}
}

// HandleUnlike godoc
// @Summary Remove a like from a post
// @Tags like
// @Security BearerAuth
// @Param postID path int true "Post id"
// @Success 204 "Like removed"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Like not found"
// @Router /like/{postID} [delete]
func (h *Handlers) HandleUnlike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := postIDFromURL(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Unlike(r.Context(), auth.ActorFromContext(r.Context()), postID); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
