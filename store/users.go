package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/user/microblog-go/apperror"
)

// NormalizeEmail lowercases and trims an email address so uniqueness is
// case-insensitive. All email comparisons go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new user. A duplicate email, including one inserted
// concurrently, surfaces as a ConflictError: the unique constraint decides
// the race, not an application-level pre-check.
func (s *Store) CreateUser(ctx context.Context, name, email, hashedPassword string) (*User, error) {
	user := &User{
		Name:           name,
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
	}

	query := `INSERT INTO users (name, email, hashed_password)
	          VALUES ($1, $2, $3)
	          RETURNING id, is_active, created_at`
	err := s.pool.QueryRow(ctx, query, user.Name, user.Email, user.HashedPassword).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return nil, apperror.NewConflictError("Email already registered", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, userID int) (*User, error) {
	query := `SELECT id, name, email, hashed_password, is_active, created_at
	          FROM users WHERE id = $1`
	var user User
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, name, email, hashed_password, is_active, created_at
	          FROM users WHERE email = $1`
	var user User
	err := s.pool.QueryRow(ctx, query, NormalizeEmail(email)).Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return &user, nil
}

// UpdateUser merges only the fields present in patch into the user row and
// returns the updated user. An empty patch returns the current row unchanged.
func (s *Store) UpdateUser(ctx context.Context, userID int, patch UserPatch) (*User, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if patch.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *patch.Name)
		argID++
	}
	if patch.HashedPassword != nil {
		setClauses = append(setClauses, fmt.Sprintf("hashed_password = $%d", argID))
		args = append(args, *patch.HashedPassword)
		argID++
	}

	if len(setClauses) == 0 {
		return s.GetUserByID(ctx, userID)
	}

	args = append(args, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d
	          RETURNING id, name, email, hashed_password, is_active, created_at`,
		strings.Join(setClauses, ", "), argID)

	var user User
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user", err)
	}
	return &user, nil
}

// DeleteUser removes a user and everything that depends on it inside one
// transaction: every like the user placed anywhere, every post the user
// owns, and every like on those posts (including likes by other users). The
// likes are removed by a single statement whose WHERE covers both sets, so a
// like that is both authored by the user and on the user's own post is
// counted exactly once. The returned counts are the actual rows affected.
func (s *Store) DeleteUser(ctx context.Context, userID int) (res DeleteUserResult, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = apperror.NewDatabaseError("failed to commit user deletion", commitErr)
		} else {
			s.log.Debug().
				Int("user_id", userID).
				Int("posts_deleted", res.PostsDeleted).
				Int("likes_deleted", res.LikesDeleted).
				Msg("user deleted with dependents")
		}
	}()

	likesTag, err := tx.Exec(ctx, `
		DELETE FROM likes
		WHERE user_id = $1
		   OR post_id IN (SELECT id FROM posts WHERE owner_id = $1)`, userID)
	if err != nil {
		return res, apperror.NewDatabaseError("failed to delete dependent likes", err)
	}

	postsTag, err := tx.Exec(ctx, `DELETE FROM posts WHERE owner_id = $1`, userID)
	if err != nil {
		return res, apperror.NewDatabaseError("failed to delete user's posts", err)
	}

	userTag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return res, apperror.NewDatabaseError("failed to delete user", err)
	}
	if userTag.RowsAffected() == 0 {
		// Racing a concurrent deletion: the loser observes not-found and the
		// rollback leaves nothing half-applied.
		err = apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		return res, err
	}

	res.LikesDeleted = int(likesTag.RowsAffected())
	res.PostsDeleted = int(postsTag.RowsAffected())
	return res, nil
}

// CountPostsByOwner returns the number of posts owned by the user.
func (s *Store) CountPostsByOwner(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE owner_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count posts", err)
	}
	return count, nil
}

// CountLikesByUser returns the number of likes the user has placed.
func (s *Store) CountLikesByUser(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count likes", err)
	}
	return count, nil
}
