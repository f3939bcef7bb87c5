package posts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/policy"
	"github.com/user/microblog-go/store"
)

// fakeRepo is an in-memory Repository for orchestration tests. It mirrors
// the store's contract: not-found errors for missing rows, SQL-side
// visibility filtering for lists.
type fakeRepo struct {
	posts     map[int]store.Post
	likes     map[int][]store.Like
	nextID    int
	listCalls int
	lastPatch store.PostPatch
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{posts: map[int]store.Post{}, likes: map[int][]store.Like{}, nextID: 1}
}

func (f *fakeRepo) CreatePost(_ context.Context, ownerID int, title string, description *string, content string, isPublic bool) (*store.Post, error) {
	post := store.Post{
		ID:          f.nextID,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Content:     content,
		IsPublic:    isPublic,
	}
	f.posts[post.ID] = post
	f.nextID++
	return &post, nil
}

func (f *fakeRepo) GetPostByID(_ context.Context, postID int) (*store.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, apperror.NewNotFoundError("Post not found", nil)
	}
	return &post, nil
}

func (f *fakeRepo) ListPostsVisibleTo(_ context.Context, viewerID, offset, limit int) ([]store.Post, error) {
	f.listCalls++
	visible := make([]store.Post, 0)
	for id := 1; id < f.nextID; id++ {
		post, ok := f.posts[id]
		if !ok {
			continue
		}
		if post.IsPublic || post.OwnerID == viewerID {
			visible = append(visible, post)
		}
	}
	if offset >= len(visible) {
		return []store.Post{}, nil
	}
	end := offset + limit
	if end > len(visible) {
		end = len(visible)
	}
	return visible[offset:end], nil
}

func (f *fakeRepo) UpdatePost(_ context.Context, postID int, patch store.PostPatch) (*store.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, apperror.NewNotFoundError("Post not found", nil)
	}
	f.lastPatch = patch
	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Description.Set {
		post.Description = patch.Description.Value
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.IsPublic != nil {
		post.IsPublic = *patch.IsPublic
	}
	f.posts[postID] = post
	return &post, nil
}

func (f *fakeRepo) DeletePost(_ context.Context, postID int) (int, error) {
	if _, ok := f.posts[postID]; !ok {
		return 0, apperror.NewNotFoundError("Post not found", nil)
	}
	deleted := len(f.likes[postID])
	delete(f.posts, postID)
	delete(f.likes, postID)
	return deleted, nil
}

func (f *fakeRepo) ListLikesForPost(_ context.Context, postID int) ([]store.Like, error) {
	likes := f.likes[postID]
	if likes == nil {
		likes = []store.Like{}
	}
	return likes, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateDefaultsToPublic(t *testing.T) {
	service, _ := newTestService()
	actor := policy.Actor{ID: 1}

	post, err := service.Create(context.Background(), actor, CreatePostRequest{
		Title:   "hello",
		Content: "body",
	})
	require.NoError(t, err)
	assert.True(t, post.IsPublic)
	assert.Equal(t, 1, post.OwnerID)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	service, repo := newTestService()
	actor := policy.Actor{ID: 1}

	_, err := service.Create(context.Background(), actor, CreatePostRequest{Title: "   ", Content: "body"})
	assert.True(t, apperror.IsValidationError(err))

	_, err = service.Create(context.Background(), actor, CreatePostRequest{Title: "hello", Content: ""})
	assert.True(t, apperror.IsValidationError(err))

	assert.Empty(t, repo.posts, "nothing should be stored on validation failure")
}

func TestCreateRequiresAuthentication(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Create(context.Background(), policy.Anonymous(), CreatePostRequest{Title: "t", Content: "c"})
	assert.True(t, apperror.IsAuthError(err))
}

func TestListFiltersPrivatePostsOfOthers(t *testing.T) {
	service, _ := newTestService()
	owner := policy.Actor{ID: 1}
	other := policy.Actor{ID: 2}

	_, err := service.Create(context.Background(), owner, CreatePostRequest{Title: "public", Content: "c"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), owner, CreatePostRequest{Title: "private", Content: "c", IsPublic: boolPtr(false)})
	require.NoError(t, err)

	ownerView, err := service.List(context.Background(), owner, 0, 10)
	require.NoError(t, err)
	assert.Len(t, ownerView, 2, "owner sees own private post")

	otherView, err := service.List(context.Background(), other, 0, 10)
	require.NoError(t, err)
	require.Len(t, otherView, 1)
	assert.Equal(t, "public", otherView[0].Title)
}

func TestListRejectsBadBoundsBeforeStorage(t *testing.T) {
	service, repo := newTestService()
	actor := policy.Actor{ID: 1}

	_, err := service.List(context.Background(), actor, -1, 10)
	assert.True(t, apperror.IsValidationError(err))

	_, err = service.List(context.Background(), actor, 0, 0)
	assert.True(t, apperror.IsValidationError(err))

	assert.Zero(t, repo.listCalls, "storage must not be queried for invalid bounds")
}

func TestGetPrivatePostForbiddenNotHidden(t *testing.T) {
	service, _ := newTestService()
	owner := policy.Actor{ID: 1}
	other := policy.Actor{ID: 2}

	created, err := service.Create(context.Background(), owner, CreatePostRequest{
		Title: "secret", Content: "c", IsPublic: boolPtr(false),
	})
	require.NoError(t, err)

	// Owner reads it fine, likes attached.
	got, err := service.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Title)
	assert.NotNil(t, got.Likes)

	// A different user gets forbidden, not not-found.
	_, err = service.Get(context.Background(), other, created.ID)
	assert.True(t, apperror.IsForbidden(err))

	// A missing post is not-found for everyone.
	_, err = service.Get(context.Background(), other, 9999)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdatePartialPatchLeavesOtherFields(t *testing.T) {
	service, repo := newTestService()
	owner := policy.Actor{ID: 1}

	created, err := service.Create(context.Background(), owner, CreatePostRequest{
		Title: "before", Content: "body", Description: strPtr("desc"),
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), owner, created.ID, UpdatePostRequest{
		Title: strPtr("after"),
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "body", updated.Content)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "desc", *updated.Description)

	assert.Nil(t, repo.lastPatch.Content, "untouched fields must not appear in the patch")
	assert.False(t, repo.lastPatch.Description.Set)
	assert.Nil(t, repo.lastPatch.IsPublic)
}

func TestUpdateExplicitNullClearsDescription(t *testing.T) {
	service, repo := newTestService()
	owner := policy.Actor{ID: 1}

	created, err := service.Create(context.Background(), owner, CreatePostRequest{
		Title: "t", Content: "c", Description: strPtr("desc"),
	})
	require.NoError(t, err)

	// Decoded from the wire so the null/absent distinction is exercised
	// end to end: an explicit null must clear the description.
	var req UpdatePostRequest
	require.NoError(t, json.Unmarshal([]byte(`{"description": null}`), &req))

	updated, err := service.Update(context.Background(), owner, created.ID, req)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.True(t, repo.lastPatch.Description.Set, "null is present, not absent")
	assert.Nil(t, repo.lastPatch.Description.Value)

	// An update that omits the key entirely leaves the description alone.
	second, err := service.Create(context.Background(), owner, CreatePostRequest{
		Title: "t2", Content: "c2", Description: strPtr("keep"),
	})
	require.NoError(t, err)

	var req2 UpdatePostRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title": "renamed"}`), &req2))

	kept, err := service.Update(context.Background(), owner, second.ID, req2)
	require.NoError(t, err)
	require.NotNil(t, kept.Description)
	assert.Equal(t, "keep", *kept.Description)
}

func TestUpdateOwnerOnly(t *testing.T) {
	service, _ := newTestService()
	owner := policy.Actor{ID: 1}
	other := policy.Actor{ID: 2}

	created, err := service.Create(context.Background(), owner, CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), other, created.ID, UpdatePostRequest{Title: strPtr("x")})
	assert.True(t, apperror.IsForbidden(err), "public post is readable but not writable by others")
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	service, _ := newTestService()
	owner := policy.Actor{ID: 1}

	created, err := service.Create(context.Background(), owner, CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), owner, created.ID, UpdatePostRequest{Title: strPtr("  ")})
	assert.True(t, apperror.IsValidationError(err))
}

func TestDeleteOwnerOnlyAndRemovesPost(t *testing.T) {
	service, repo := newTestService()
	owner := policy.Actor{ID: 1}
	other := policy.Actor{ID: 2}

	created, err := service.Create(context.Background(), owner, CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	repo.likes[created.ID] = []store.Like{{ID: 1, UserID: 2, PostID: created.ID}}

	err = service.Delete(context.Background(), other, created.ID)
	assert.True(t, apperror.IsForbidden(err))

	err = service.Delete(context.Background(), owner, created.ID)
	require.NoError(t, err)

	_, err = service.Get(context.Background(), owner, created.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = service.Delete(context.Background(), owner, created.ID)
	assert.True(t, apperror.IsNotFound(err), "second delete finds nothing")
}
