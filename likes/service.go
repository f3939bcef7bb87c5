// Package likes provides the like/unlike operations. A like is an at-most-one
// endorsement of a post by a user: duplicates conflict, and visibility of the
// post governs who may like it.
package likes

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/policy"
	"github.com/user/microblog-go/store"
)

// Repository is the slice of the content store the like service needs.
type Repository interface {
	GetPostByID(ctx context.Context, postID int) (*store.Post, error)
	CreateLike(ctx context.Context, userID, postID int) (*store.Like, error)
	GetLike(ctx context.Context, userID, postID int) (*store.Like, error)
	DeleteLike(ctx context.Context, userID, postID int) error
}

// Service provides like operations.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a like Service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Like records the actor's like on a post. The post must be visible to the
// actor: public, or the actor's own. Owners may like their own posts,
// private ones included. Liking twice is a conflict; the uniqueness
// constraint in storage decides races between concurrent attempts.
func (s *Service) Like(ctx context.Context, actor policy.Actor, postID int) (*store.Like, error) {
	if actor.Anonymous {
		return nil, apperror.NewAuthError("authentication required", nil)
	}

	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !policy.CanActOnPost(actor, policy.PostResource{OwnerID: post.OwnerID, Public: post.IsPublic}, policy.ActionLike) {
		return nil, apperror.NewForbiddenError("Not authorized to like this post", nil)
	}

	like, err := s.repo.CreateLike(ctx, actor.ID, postID)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("user_id", actor.ID).
		Int("post_id", postID).
		Msg("post liked")

	return like, nil
}

// Unlike removes the actor's like from a post. Only the user who placed a
// like may remove it; absent likes are not-found, so unliking is not
// idempotent from the caller's view.
func (s *Service) Unlike(ctx context.Context, actor policy.Actor, postID int) error {
	if actor.Anonymous {
		return apperror.NewAuthError("authentication required", nil)
	}

	like, err := s.repo.GetLike(ctx, actor.ID, postID)
	if err != nil {
		return err
	}

	if !policy.CanRemoveLike(actor, like.UserID) {
		return apperror.NewForbiddenError("Not authorized to remove this like", nil)
	}

	return s.repo.DeleteLike(ctx, actor.ID, postID)
}
