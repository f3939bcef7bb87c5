package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/user/microblog-go/apperror"
)

// CreateLike inserts a like by userID on postID. The (user, post) uniqueness
// constraint decides concurrent duplicates: exactly one insert wins, the
// other observes a ConflictError.
func (s *Store) CreateLike(ctx context.Context, userID, postID int) (*Like, error) {
	like := &Like{
		PostID: postID,
		UserID: userID,
	}

	query := `INSERT INTO likes (post_id, user_id)
	          VALUES ($1, $2)
	          RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, query, like.PostID, like.UserID).Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "user_post") {
			return nil, apperror.NewConflictError("Already liked", nil)
		}
		if isForeignKeyViolation(err) {
			// Post (or user) deleted between the policy check and the insert.
			return nil, apperror.NewNotFoundError("Post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create like", err)
	}
	return like, nil
}

// GetLike retrieves the like placed by userID on postID.
func (s *Store) GetLike(ctx context.Context, userID, postID int) (*Like, error) {
	query := `SELECT id, post_id, user_id, created_at
	          FROM likes WHERE user_id = $1 AND post_id = $2`
	var like Like
	err := s.pool.QueryRow(ctx, query, userID, postID).Scan(
		&like.ID, &like.PostID, &like.UserID, &like.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Like not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get like", err)
	}
	return &like, nil
}

// DeleteLike removes the like placed by userID on postID. Racing a
// concurrent removal, the loser observes a NotFoundError.
func (s *Store) DeleteLike(ctx context.Context, userID, postID int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete like", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Like not found", nil)
	}
	return nil
}

// ListLikesForPost returns all likes on a post, oldest first.
func (s *Store) ListLikesForPost(ctx context.Context, postID int) ([]Like, error) {
	query := `SELECT id, post_id, user_id, created_at
	          FROM likes WHERE post_id = $1 ORDER BY id ASC`
	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list likes", err)
	}
	defer rows.Close()

	likes := []Like{}
	for rows.Next() {
		var like Like
		if err := rows.Scan(&like.ID, &like.PostID, &like.UserID, &like.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan like", err)
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read likes", err)
	}
	return likes, nil
}
