// Package posts provides content orchestration: creating, reading, listing,
// updating and deleting posts under the visibility policy.
package posts

import "github.com/user/microblog-go/store"

// CreatePostRequest is the post creation payload. IsPublic defaults to true
// when omitted.
type CreatePostRequest struct {
	Title       string  `json:"title" validate:"required,min=1" example:"My first post"`
	Description *string `json:"description,omitempty" example:"A short summary"`
	Content     string  `json:"content" validate:"required,min=1" example:"Hello, world."`
	IsPublic    *bool   `json:"is_public,omitempty" example:"true"`
}

// UpdatePostRequest is a partial post update: only supplied fields change.
// Absent fields are left untouched, which is a different contract from
// setting a field to null. Description is the one nullable column, so it
// carries the tri-state type: sending an explicit null clears it.
type UpdatePostRequest struct {
	Title       *string         `json:"title,omitempty"`
	Description store.OptString `json:"description"`
	Content     *string         `json:"content,omitempty"`
	IsPublic    *bool           `json:"is_public,omitempty"`
}

// PostWithLikes is a single-post response including the likes on it.
type PostWithLikes struct {
	store.Post
	Likes []store.Like `json:"likes"`
}

// DefaultListLimit is used when the caller omits the limit parameter.
const DefaultListLimit = 100
