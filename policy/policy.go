// Package policy contains the authorization decision table for the service.
// Decisions are pure functions over an actor and a resource snapshot: no I/O,
// no storage, deterministic. Services ask the policy before touching the
// repository and translate a denial into apperror.ForbiddenError themselves.
package policy

// Action is an operation an actor may request on a post.
type Action int

const (
	// ActionRead is viewing a single post.
	ActionRead Action = iota
	// ActionWrite is updating a post's fields.
	ActionWrite
	// ActionDelete is deleting a post.
	ActionDelete
	// ActionLike is placing a like on a post.
	ActionLike
)

// Actor is the identity derived from a validated token. An unauthenticated
// caller carries the Anonymous flag; construct it with Anonymous() rather
// than relying on the zero value, which reads as user id 0.
type Actor struct {
	ID        int
	Anonymous bool
}

// Anonymous returns the actor representing an unauthenticated caller.
func Anonymous() Actor {
	return Actor{Anonymous: true}
}

// PostResource is the snapshot of a post a decision needs: who owns it and
// whether it is public.
type PostResource struct {
	OwnerID int
	Public  bool
}

// CanActOnPost decides whether actor may perform action on post.
//
//	read:   public posts, or the owner
//	like:   public posts, or the owner (an owner may like their own
//	        private post; this is a policy choice, not an accident)
//	write:  owner only
//	delete: owner only
//
// Anonymous actors are allowed nothing here; every in-scope endpoint
// requires a valid token.
func CanActOnPost(actor Actor, post PostResource, action Action) bool {
	if actor.Anonymous {
		return false
	}
	switch action {
	case ActionRead, ActionLike:
		return post.Public || actor.ID == post.OwnerID
	case ActionWrite, ActionDelete:
		return actor.ID == post.OwnerID
	default:
		return false
	}
}

// CanRemoveLike decides whether actor may remove a like. Only the actor who
// placed the like may remove it.
func CanRemoveLike(actor Actor, likeOwnerID int) bool {
	return !actor.Anonymous && actor.ID == likeOwnerID
}

// IsSelf decides whether actor may perform account operations (view, update,
// delete own profile) on the user identified by userID. No actor may operate
// on another actor's account.
func IsSelf(actor Actor, userID int) bool {
	return !actor.Anonymous && actor.ID == userID
}
