package users

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/credentials"
	"github.com/user/microblog-go/policy"
	"github.com/user/microblog-go/store"
)

// Repository is the slice of the content store the account service needs.
type Repository interface {
	GetUserByID(ctx context.Context, userID int) (*store.User, error)
	UpdateUser(ctx context.Context, userID int, patch store.UserPatch) (*store.User, error)
	DeleteUser(ctx context.Context, userID int) (store.DeleteUserResult, error)
	CountPostsByOwner(ctx context.Context, userID int) (int, error)
	CountLikesByUser(ctx context.Context, userID int) (int, error)
}

// Service provides account operations. Every operation checks that the actor
// is acting on their own account; no actor may act on another's.
type Service struct {
	repo   Repository
	hasher *credentials.Hasher
	log    zerolog.Logger
}

// NewService creates an account Service.
func NewService(repo Repository, hasher *credentials.Hasher, log zerolog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, log: log}
}

// GetProfile returns the user's profile.
func (s *Service) GetProfile(ctx context.Context, actor policy.Actor, userID int) (*store.User, error) {
	if !policy.IsSelf(actor, userID) {
		return nil, apperror.NewForbiddenError("Not authorized to view this account", nil)
	}
	return s.repo.GetUserByID(ctx, userID)
}

// UpdateAccount applies a partial update to the user's account. Only
// supplied fields are changed; a supplied password must satisfy the strength
// policy and is re-hashed before it reaches storage.
func (s *Service) UpdateAccount(ctx context.Context, actor policy.Actor, userID int, req UpdateAccountRequest) (*store.User, error) {
	if !policy.IsSelf(actor, userID) {
		return nil, apperror.NewForbiddenError("Not authorized to update this account", nil)
	}

	patch := store.UserPatch{Name: req.Name}
	if req.Password != nil {
		if err := credentials.ValidateStrength(*req.Password); err != nil {
			return nil, err
		}
		digest, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.HashedPassword = &digest
	}

	return s.repo.UpdateUser(ctx, userID, patch)
}

// DeleteAccount removes the user's account together with all of their posts
// and every dependent like, reporting exactly what was removed.
func (s *Service) DeleteAccount(ctx context.Context, actor policy.Actor, userID int) (*DeleteAccountResponse, error) {
	if !policy.IsSelf(actor, userID) {
		return nil, apperror.NewForbiddenError("Not authorized to delete this account", nil)
	}

	res, err := s.repo.DeleteUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Int("posts_deleted", res.PostsDeleted).
		Int("likes_deleted", res.LikesDeleted).
		Msg("account deleted")

	return &DeleteAccountResponse{
		Message:      fmt.Sprintf("User deleted successfully. Removed %d posts and %d likes.", res.PostsDeleted, res.LikesDeleted),
		PostsDeleted: res.PostsDeleted,
		LikesDeleted: res.LikesDeleted,
	}, nil
}

// GetStats computes the user's post count, like count and their sum. The
// counting is delegated to the repository so the result stays correct at any
// data volume.
func (s *Service) GetStats(ctx context.Context, actor policy.Actor, userID int) (*StatsResponse, error) {
	if !policy.IsSelf(actor, userID) {
		return nil, apperror.NewForbiddenError("Not authorized to view this account", nil)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	postsCount, err := s.repo.CountPostsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	likesCount, err := s.repo.CountLikesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		UserID:      user.ID,
		UserName:    user.Name,
		UserEmail:   user.Email,
		PostsCount:  postsCount,
		LikesCount:  likesCount,
		TotalImpact: postsCount + likesCount,
	}, nil
}
