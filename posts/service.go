package posts

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/policy"
	"github.com/user/microblog-go/store"
)

// Repository is the slice of the content store the post service needs.
type Repository interface {
	CreatePost(ctx context.Context, ownerID int, title string, description *string, content string, isPublic bool) (*store.Post, error)
	GetPostByID(ctx context.Context, postID int) (*store.Post, error)
	ListPostsVisibleTo(ctx context.Context, viewerID, offset, limit int) ([]store.Post, error)
	UpdatePost(ctx context.Context, postID int, patch store.PostPatch) (*store.Post, error)
	DeletePost(ctx context.Context, postID int) (int, error)
	ListLikesForPost(ctx context.Context, postID int) ([]store.Like, error)
}

// Service provides post operations. Reads and mutations of existing posts
// are gated by the authorization policy; a post that exists but is not
// visible yields a ForbiddenError, distinct from NotFoundError.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a post Service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create makes a new post owned by the actor.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreatePostRequest) (*store.Post, error) {
	if actor.Anonymous {
		return nil, apperror.NewAuthError("authentication required", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.NewValidationError("title must not be empty", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.NewValidationError("content must not be empty", nil)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	return s.repo.CreatePost(ctx, actor.ID, req.Title, req.Description, req.Content, isPublic)
}

// List returns the page of posts visible to the actor: public posts plus the
// actor's own private ones, in ascending id order. Invalid bounds are a
// caller contract violation and are rejected before any storage access.
func (s *Service) List(ctx context.Context, actor policy.Actor, offset, limit int) ([]store.Post, error) {
	if actor.Anonymous {
		return nil, apperror.NewAuthError("authentication required", nil)
	}
	if offset < 0 {
		return nil, apperror.NewValidationError("skip must be >= 0", nil)
	}
	if limit <= 0 {
		return nil, apperror.NewValidationError("limit must be > 0", nil)
	}

	return s.repo.ListPostsVisibleTo(ctx, actor.ID, offset, limit)
}

// Get returns a single post with its likes. A private post of another owner
// is forbidden, not hidden: the caller learns the post exists but may not
// read it. A nonexistent post is not-found regardless of actor.
func (s *Service) Get(ctx context.Context, actor policy.Actor, postID int) (*PostWithLikes, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !policy.CanActOnPost(actor, policy.PostResource{OwnerID: post.OwnerID, Public: post.IsPublic}, policy.ActionRead) {
		return nil, apperror.NewForbiddenError("Not authorized to view this post", nil)
	}

	likes, err := s.repo.ListLikesForPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &PostWithLikes{Post: *post, Likes: likes}, nil
}

// Update merges the supplied fields into the post. Owner only.
func (s *Service) Update(ctx context.Context, actor policy.Actor, postID int, req UpdatePostRequest) (*store.Post, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !policy.CanActOnPost(actor, policy.PostResource{OwnerID: post.OwnerID, Public: post.IsPublic}, policy.ActionWrite) {
		return nil, apperror.NewForbiddenError("Not authorized to update this post", nil)
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, apperror.NewValidationError("title must not be empty", nil)
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		return nil, apperror.NewValidationError("content must not be empty", nil)
	}

	return s.repo.UpdatePost(ctx, postID, store.PostPatch{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		IsPublic:    req.IsPublic,
	})
}

// Delete removes the post and all likes on it. Owner only. The number of
// likes removed is tracked internally for consistency but not surfaced to
// the caller.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, postID int) error {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	if !policy.CanActOnPost(actor, policy.PostResource{OwnerID: post.OwnerID, Public: post.IsPublic}, policy.ActionDelete) {
		return apperror.NewForbiddenError("Not authorized to delete this post", nil)
	}

	likesDeleted, err := s.repo.DeletePost(ctx, postID)
	if err != nil {
		return err
	}

	s.log.Info().
		Int("post_id", postID).
		Int("likes_deleted", likesDeleted).
		Msg("post deleted")
	return nil
}
