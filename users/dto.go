// Package users provides account orchestration: profile access, partial
// updates, cascade account deletion and derived statistics.
package users

// UpdateAccountRequest is a partial account update. A nil field is left
// untouched; a supplied password is re-validated against the password policy
// and re-hashed before storage.
type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty" example:"Jane Doe"`
	Password *string `json:"password,omitempty" example:"NewValid1!pass"`
}

// DeleteAccountResponse reports what the account cascade removed.
type DeleteAccountResponse struct {
	Message      string `json:"message"`
	PostsDeleted int    `json:"posts_deleted"`
	LikesDeleted int    `json:"likes_deleted"`
}

// StatsResponse carries the user's derived statistics. TotalImpact is the
// sum of posts and likes.
type StatsResponse struct {
	UserID      int    `json:"user_id"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	PostsCount  int    `json:"posts_count"`
	LikesCount  int    `json:"likes_count"`
	TotalImpact int    `json:"total_impact"`
}
