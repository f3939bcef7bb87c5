package posts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
)

var validate = validator.New()

// Handlers exposes post operations over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates new post Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the post routes on the given router. The router is
// expected to already carry the bearer-token middleware.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate())
	r.Get("/", h.HandleList())
	r.Get("/{postID}", h.HandleGet())
	r.Put("/{postID}", h.HandleUpdate())
	r.Delete("/{postID}", h.HandleDelete())
}

func postIDFromURL(r *http.Request) (int, error) {
	postID, err := strconv.Atoi(chi.URLParam(r, "postID"))
	if err != nil {
		return 0, apperror.NewBadRequestError("invalid post id", err)
	}
	return postID, nil
}

// HandleCreate godoc
// @Summary Create a post
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postBody body CreatePostRequest true "Post to create"
// @Success 201 {object} store.Post
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Router /blog [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("title and content are required", err))
			return
		}

		post, err := h.service.Create(r.Context(), auth.ActorFromContext(r.Context()), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, post)
	}
}

// HandleList godoc
// @Summary List posts visible to the caller
// @Description Returns public posts plus the caller's own private posts, ordered by ascending id. skip must be >= 0 and limit > 0.
// @Tags blog
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset into the result set" default(0)
// @Param limit query int false "Maximum number of posts" default(100)
// @Success 200 {array} store.Post
// @Failure 400 {object} apperror.ErrorResponse "Invalid pagination bounds"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Router /blog [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip := 0
		limit := DefaultListLimit

		// Bounds are parsed here but validated in the service, before any
		// storage access.
		if v := r.URL.Query().Get("skip"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				auth.WriteError(w, r, apperror.NewValidationError("skip must be an integer", err))
				return
			}
			skip = parsed
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				auth.WriteError(w, r, apperror.NewValidationError("limit must be an integer", err))
				return
			}
			limit = parsed
		}

		postList, err := h.service.List(r.Context(), auth.ActorFromContext(r.Context()), skip, limit)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, postList)
	}
}

// HandleGet godoc
// @Summary Get a single post with its likes
// @Tags blog
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post id"
// @Success 200 {object} PostWithLikes
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Post is private"
// @Failure 404 {object} apperror.ErrorResponse "Post not found"
// @Router /blog/{postID} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := postIDFromURL(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		post, err := h.service.Get(r.Context(), auth.ActorFromContext(r.Context()), postID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleUpdate godoc
// @Summary Update a post
// @Description Partially updates a post: only supplied fields change. Owner only.
// @Tags blog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post id"
// @Param updateBody body UpdatePostRequest true "Fields to update"
// @Success 200 {object} store.Post
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Post not found"
// @Router /blog/{postID} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := postIDFromURL(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		post, err := h.service.Update(r.Context(), auth.ActorFromContext(r.Context()), postID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleDelete godoc
// @Summary Delete a post
// @Description Deletes a post and, atomically, every like on it. Owner only.
// @Tags blog
// @Security BearerAuth
// @Param postID path int true "Post id"
// @Success 204 "Post deleted"
// @Failure 401 {object} apperror.ErrorResponse "Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Post not found"
// @Router /blog/{postID} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := postIDFromURL(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), auth.ActorFromContext(r.Context()), postID); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
