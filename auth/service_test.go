package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/config"
	"github.com/user/microblog-go/credentials"
	"github.com/user/microblog-go/store"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	users  map[string]*store.User
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*store.User{}, nextID: 1}
}

func (f *fakeRepo) CreateUser(_ context.Context, name, email, hashedPassword string) (*store.User, error) {
	email = store.NormalizeEmail(email)
	if _, exists := f.users[email]; exists {
		return nil, apperror.NewConflictError("Email already registered", nil)
	}
	user := &store.User{
		ID:             f.nextID,
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	f.nextID++
	f.users[email] = user
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	user, ok := f.users[store.NormalizeEmail(email)]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return user, nil
}

func newTestService(repo Repository) *Service {
	hasher := credentials.NewHasher(bcrypt.MinCost)
	tokens := NewTokenService(config.AuthConfig{
		JWTSecret:           "test-secret",
		AccessTokenDuration: time.Minute,
	})
	return NewService(repo, hasher, tokens, zerolog.Nop())
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "A",
		Email:    "A@X.com",
		Password: "Valid1!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEqual(t, "Valid1!pass", user.HashedPassword)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "a@x.com",
		Password: "Valid1!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.ExpiresIn, int64(0))
}

func TestRegisterWeakPasswordDoesNotTouchStorage(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "A",
		Email:    "a@x.com",
		Password: "weak",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
	assert.Empty(t, repo.users, "weak password must be rejected before any storage mutation")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@x.com", Password: "Valid1!pass"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "B", Email: "A@x.com", Password: "Valid2!pass"})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@x.com", Password: "Valid1!pass"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "Wrong1!pass"})
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@x.com", Password: "Valid1!pass"})
	require.NoError(t, err)

	_, wrongPass := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "Wrong1!pass"})
	_, unknown := svc.Login(context.Background(), LoginRequest{Email: "b@x.com", Password: "Valid1!pass"})

	// Same kind and same message: callers cannot probe registered emails.
	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.True(t, apperror.IsAuthError(wrongPass))
	assert.True(t, apperror.IsAuthError(unknown))
	wp, _ := apperror.FromError(wrongPass)
	un, _ := apperror.FromError(unknown)
	assert.Equal(t, wp.Message, un.Message)
}
