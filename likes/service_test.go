package likes

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/policy"
	"github.com/user/microblog-go/store"
)

type likeKey struct {
	userID int
	postID int
}

// fakeRepo is an in-memory Repository for like orchestration tests. Like the
// real store it conflicts on duplicate (user, post) pairs and returns
// not-found for absent rows.
type fakeRepo struct {
	posts  map[int]store.Post
	likes  map[likeKey]store.Like
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{posts: map[int]store.Post{}, likes: map[likeKey]store.Like{}, nextID: 1}
}

func (f *fakeRepo) addPost(ownerID int, isPublic bool) store.Post {
	post := store.Post{
		ID:       f.nextID,
		OwnerID:  ownerID,
		Title:    fmt.Sprintf("post %d", f.nextID),
		Content:  "content",
		IsPublic: isPublic,
	}
	f.posts[post.ID] = post
	f.nextID++
	return post
}

func (f *fakeRepo) GetPostByID(_ context.Context, postID int) (*store.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, apperror.NewNotFoundError("Post not found", nil)
	}
	return &post, nil
}

func (f *fakeRepo) CreateLike(_ context.Context, userID, postID int) (*store.Like, error) {
	key := likeKey{userID: userID, postID: postID}
	if _, ok := f.likes[key]; ok {
		return nil, apperror.NewConflictError("Already liked", nil)
	}
	like := store.Like{ID: f.nextID, UserID: userID, PostID: postID}
	f.nextID++
	f.likes[key] = like
	return &like, nil
}

func (f *fakeRepo) GetLike(_ context.Context, userID, postID int) (*store.Like, error) {
	like, ok := f.likes[likeKey{userID: userID, postID: postID}]
	if !ok {
		return nil, apperror.NewNotFoundError("Like not found", nil)
	}
	return &like, nil
}

func (f *fakeRepo) DeleteLike(_ context.Context, userID, postID int) error {
	key := likeKey{userID: userID, postID: postID}
	if _, ok := f.likes[key]; !ok {
		return apperror.NewNotFoundError("Like not found", nil)
	}
	delete(f.likes, key)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestLikePublicPost(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, true)

	like, err := service.Like(context.Background(), policy.Actor{ID: 2}, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, like.UserID)
	assert.Equal(t, post.ID, like.PostID)
}

func TestLikeTwiceConflicts(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, true)
	actor := policy.Actor{ID: 2}

	_, err := service.Like(context.Background(), actor, post.ID)
	require.NoError(t, err)

	_, err = service.Like(context.Background(), actor, post.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestOwnerMayLikeOwnPrivatePost(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, false)

	like, err := service.Like(context.Background(), policy.Actor{ID: 1}, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, like.UserID)
}

func TestLikePrivatePostOfOtherForbidden(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, false)

	_, err := service.Like(context.Background(), policy.Actor{ID: 2}, post.ID)
	assert.True(t, apperror.IsForbidden(err))
	assert.Empty(t, repo.likes, "no like row may exist after a denied attempt")
}

func TestLikeMissingPostNotFound(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Like(context.Background(), policy.Actor{ID: 2}, 9999)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLikeRequiresAuthentication(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, true)

	_, err := service.Like(context.Background(), policy.Anonymous(), post.ID)
	assert.True(t, apperror.IsAuthError(err))
}

func TestUnlikeRemovesOwnLike(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, true)
	actor := policy.Actor{ID: 2}

	_, err := service.Like(context.Background(), actor, post.ID)
	require.NoError(t, err)

	err = service.Unlike(context.Background(), actor, post.ID)
	require.NoError(t, err)

	// Gone: a second unlike is not-found, not a no-op.
	err = service.Unlike(context.Background(), actor, post.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUnlikeOnlySeesOwnLikes(t *testing.T) {
	service, repo := newTestService()
	post := repo.addPost(1, true)

	_, err := service.Like(context.Background(), policy.Actor{ID: 2}, post.ID)
	require.NoError(t, err)

	// A different user never liked this post, so their unlike misses even
	// though a like row exists for someone else.
	err = service.Unlike(context.Background(), policy.Actor{ID: 3}, post.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Len(t, repo.likes, 1, "the original like must survive")
}
