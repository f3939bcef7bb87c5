// Package store owns User, Post and Like storage. It is the transactional
// boundary of the application: every multi-step, invariant-preserving
// sequence (duplicate-email check and insert, duplicate-like check and
// insert, cascade deletion) executes here inside a single transaction.
package store

import (
	"encoding/json"
	"time"
)

// User represents an account row.
type User struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never exposed in responses
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Post represents a post row. Description is optional; Visibility is the
// is_public flag.
type Post struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Content     string    `json:"content"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Like represents a like row. At most one like exists per (user, post) pair,
// enforced by a uniqueness constraint.
type Like struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPatch is a partial user update. A nil field means "leave untouched";
// this is a distinct contract from "set to null". Password changes arrive
// here already hashed.
type UserPatch struct {
	Name           *string
	HashedPassword *string
}

// OptString is a tri-state JSON string field: absent, present with a value,
// or present and explicitly null. Absence leaves the column untouched; an
// explicit null clears it. The distinction is lost with a plain *string,
// where both decode to nil.
type OptString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field as present. It is only invoked for keys that
// appear in the payload, so Set stays false for absent fields.
func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON renders the value, or null when unset or explicitly null.
func (o OptString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// PostPatch is a partial post update. Only non-nil (or, for the nullable
// description, present) fields overwrite.
type PostPatch struct {
	Title       *string
	Description OptString
	Content     *string
	IsPublic    *bool
}

// DeleteUserResult reports exactly what a user cascade removed.
type DeleteUserResult struct {
	PostsDeleted int `json:"posts_deleted"`
	LikesDeleted int `json:"likes_deleted"`
}
