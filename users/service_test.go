package users

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/credentials"
	"github.com/user/microblog-go/policy"
	"github.com/user/microblog-go/store"
)

// fakeRepo is an in-memory Repository for account service tests.
type fakeRepo struct {
	user       *store.User
	postCount  int
	likeCount  int
	deleted    bool
	lastPatch  store.UserPatch
	deletedRes store.DeleteUserResult
}

func (f *fakeRepo) GetUserByID(_ context.Context, userID int) (*store.User, error) {
	if f.deleted || f.user == nil || f.user.ID != userID {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return f.user, nil
}

func (f *fakeRepo) UpdateUser(_ context.Context, userID int, patch store.UserPatch) (*store.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	f.lastPatch = patch
	if patch.Name != nil {
		f.user.Name = *patch.Name
	}
	if patch.HashedPassword != nil {
		f.user.HashedPassword = *patch.HashedPassword
	}
	return f.user, nil
}

func (f *fakeRepo) DeleteUser(_ context.Context, userID int) (store.DeleteUserResult, error) {
	if f.deleted || f.user == nil || f.user.ID != userID {
		return store.DeleteUserResult{}, apperror.NewNotFoundError("user not found", nil)
	}
	f.deleted = true
	return f.deletedRes, nil
}

func (f *fakeRepo) CountPostsByOwner(_ context.Context, _ int) (int, error) {
	return f.postCount, nil
}

func (f *fakeRepo) CountLikesByUser(_ context.Context, _ int) (int, error) {
	return f.likeCount, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, credentials.NewHasher(bcrypt.MinCost), zerolog.Nop())
}

func TestGetProfileSelfOnly(t *testing.T) {
	repo := &fakeRepo{user: &store.User{ID: 1, Name: "A", Email: "a@x.com"}}
	svc := newTestService(repo)

	user, err := svc.GetProfile(context.Background(), policy.Actor{ID: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)

	_, err = svc.GetProfile(context.Background(), policy.Actor{ID: 2}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestUpdateAccountPartial(t *testing.T) {
	repo := &fakeRepo{user: &store.User{ID: 1, Name: "A", HashedPassword: "old"}}
	svc := newTestService(repo)

	name := "New Name"
	user, err := svc.UpdateAccount(context.Background(), policy.Actor{ID: 1}, 1, UpdateAccountRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	// The untouched field must not be overwritten.
	assert.Nil(t, repo.lastPatch.HashedPassword)
	assert.Equal(t, "old", user.HashedPassword)
}

func TestUpdateAccountRehashesPassword(t *testing.T) {
	repo := &fakeRepo{user: &store.User{ID: 1, Name: "A", HashedPassword: "old"}}
	svc := newTestService(repo)

	password := "NewValid1!pass"
	user, err := svc.UpdateAccount(context.Background(), policy.Actor{ID: 1}, 1, UpdateAccountRequest{Password: &password})
	require.NoError(t, err)
	require.NotNil(t, repo.lastPatch.HashedPassword)
	assert.NotEqual(t, "old", user.HashedPassword)
	assert.NotEqual(t, password, user.HashedPassword, "plaintext must never reach storage")
	assert.True(t, credentials.NewHasher(bcrypt.MinCost).Verify(password, user.HashedPassword))
}

func TestUpdateAccountWeakPasswordRejected(t *testing.T) {
	repo := &fakeRepo{user: &store.User{ID: 1, HashedPassword: "old"}}
	svc := newTestService(repo)

	password := "weak"
	_, err := svc.UpdateAccount(context.Background(), policy.Actor{ID: 1}, 1, UpdateAccountRequest{Password: &password})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
	assert.Equal(t, "old", repo.user.HashedPassword)
}

func TestDeleteAccountReportsCounts(t *testing.T) {
	repo := &fakeRepo{
		user:       &store.User{ID: 1},
		deletedRes: store.DeleteUserResult{PostsDeleted: 3, LikesDeleted: 5},
	}
	svc := newTestService(repo)

	resp, err := svc.DeleteAccount(context.Background(), policy.Actor{ID: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.PostsDeleted)
	assert.Equal(t, 5, resp.LikesDeleted)
	assert.Contains(t, resp.Message, "3 posts")
	assert.Contains(t, resp.Message, "5 likes")
	assert.True(t, repo.deleted)

	// Deleting again observes not-found, not a second success.
	_, err = svc.DeleteAccount(context.Background(), policy.Actor{ID: 1}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetStatsComputesImpact(t *testing.T) {
	repo := &fakeRepo{
		user:      &store.User{ID: 1, Name: "A", Email: "a@x.com"},
		postCount: 4,
		likeCount: 7,
	}
	svc := newTestService(repo)

	stats, err := svc.GetStats(context.Background(), policy.Actor{ID: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.PostsCount)
	assert.Equal(t, 7, stats.LikesCount)
	assert.Equal(t, 11, stats.TotalImpact)
	assert.Equal(t, "a@x.com", stats.UserEmail)
}
