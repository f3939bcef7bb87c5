package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/credentials"
	"github.com/user/microblog-go/store"
)

// Repository is the slice of the content store the auth service needs.
type Repository interface {
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// Service provides registration and login.
type Service struct {
	repo   Repository
	hasher *credentials.Hasher
	tokens *TokenService
	log    zerolog.Logger
}

// NewService creates an auth Service.
func NewService(repo Repository, hasher *credentials.Hasher, tokens *TokenService, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

// Register creates a new account. The password policy is enforced before any
// hashing or storage mutation; a duplicate email surfaces as a ConflictError
// from the repository's unique constraint.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*store.User, error) {
	if err := credentials.ValidateStrength(req.Password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Name, req.Email, digest)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", user.ID).Msg("account registered")
	return user, nil
}

// Login authenticates a user and returns a session token. A missing account
// and a wrong password produce the same AuthError so callers cannot probe
// which emails are registered.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("Incorrect email or password", nil)
		}
		s.log.Error().Err(err).Msg("login: failed to load user")
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.HashedPassword) {
		return nil, apperror.NewAuthError("Incorrect email or password", nil)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}
