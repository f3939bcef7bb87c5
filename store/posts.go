package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/user/microblog-go/apperror"
)

// CreatePost inserts a new post owned by ownerID.
func (s *Store) CreatePost(ctx context.Context, ownerID int, title string, description *string, content string, isPublic bool) (*Post, error) {
	post := &Post{
		Title:       title,
		Description: description,
		Content:     content,
		IsPublic:    isPublic,
		OwnerID:     ownerID,
	}

	query := `INSERT INTO posts (title, description, content, is_public, owner_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, query, post.Title, post.Description, post.Content, post.IsPublic, post.OwnerID).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", ownerID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to create post", err)
	}
	return post, nil
}

// GetPostByID retrieves a post by id.
func (s *Store) GetPostByID(ctx context.Context, postID int) (*Post, error) {
	query := `SELECT id, title, description, content, is_public, owner_id, created_at
	          FROM posts WHERE id = $1`

	var post Post
	var description sql.NullString
	err := s.pool.QueryRow(ctx, query, postID).Scan(
		&post.ID, &post.Title, &description, &post.Content, &post.IsPublic, &post.OwnerID, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	if description.Valid {
		post.Description = &description.String
	}
	return &post, nil
}

// ListPostsVisibleTo returns the page of posts the viewer may see: public
// posts plus the viewer's own private ones, ordered by ascending id so
// pagination is deterministic. Filtering happens in SQL, before offset and
// limit are applied, so pages stay full at any data volume. Bounds are the
// caller's contract; the service rejects offset < 0 or limit <= 0 before
// this runs.
func (s *Store) ListPostsVisibleTo(ctx context.Context, viewerID, offset, limit int) ([]Post, error) {
	query := `SELECT id, title, description, content, is_public, owner_id, created_at
	          FROM posts
	          WHERE is_public OR owner_id = $1
	          ORDER BY id ASC
	          OFFSET $2 LIMIT $3`

	rows, err := s.pool.Query(ctx, query, viewerID, offset, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var post Post
		var description sql.NullString
		if err := rows.Scan(&post.ID, &post.Title, &description, &post.Content, &post.IsPublic, &post.OwnerID, &post.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan post", err)
		}
		if description.Valid {
			post.Description = &description.String
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read posts", err)
	}
	return posts, nil
}

// UpdatePost merges only the fields present in patch into the post row.
// Absent fields are left untouched; an empty patch returns the current row.
func (s *Store) UpdatePost(ctx context.Context, postID int, patch PostPatch) (*Post, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *patch.Title)
		argID++
	}
	if patch.Description.Set {
		// A nil Value is an explicit null: the column is cleared.
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, patch.Description.Value)
		argID++
	}
	if patch.Content != nil {
		setClauses = append(setClauses, fmt.Sprintf("content = $%d", argID))
		args = append(args, *patch.Content)
		argID++
	}
	if patch.IsPublic != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_public = $%d", argID))
		args = append(args, *patch.IsPublic)
		argID++
	}

	if len(setClauses) == 0 {
		return s.GetPostByID(ctx, postID)
	}

	args = append(args, postID)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d
	          RETURNING id, title, description, content, is_public, owner_id, created_at`,
		strings.Join(setClauses, ", "), argID)

	var post Post
	var description sql.NullString
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&post.ID, &post.Title, &description, &post.Content, &post.IsPublic, &post.OwnerID, &post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Post not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update post", err)
	}
	if description.Valid {
		post.Description = &description.String
	}
	return &post, nil
}

// DeletePost removes a post and, atomically, every like referencing it. It
// returns the number of likes removed; the count is exact because it comes
// from the DELETE's affected rows, not a separate SELECT.
func (s *Store) DeletePost(ctx context.Context, postID int) (likesDeleted int, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = apperror.NewDatabaseError("failed to commit post deletion", commitErr)
		} else {
			s.log.Debug().
				Int("post_id", postID).
				Int("likes_deleted", likesDeleted).
				Msg("post deleted")
		}
	}()

	likesTag, err := tx.Exec(ctx, `DELETE FROM likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to delete post's likes", err)
	}

	postTag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to delete post", err)
	}
	if postTag.RowsAffected() == 0 {
		err = apperror.NewNotFoundError("Post not found", nil)
		return 0, err
	}

	return int(likesTag.RowsAffected()), nil
}
