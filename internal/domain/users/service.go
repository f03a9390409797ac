package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/validation"
	"github.com/rs/zerolog"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 6

// Service handles account creation and credential checks. Plaintext
// passwords are hashed before persistence and never logged.
type Service struct {
	repo   Repository
	hasher *auth.PasswordHasher
	logger zerolog.Logger
}

func NewService(repo Repository, hasher *auth.PasswordHasher, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

type SignupInput struct {
	Username string `json:"username" validate:"notblank"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates an account. The duplicate-email probe here is a fast
// path for a clean conflict error; the unique index on users.email remains
// the authoritative guarantee and the storage layer maps its violation back
// to ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, input SignupInput) (User, error) {
	if err := validation.Struct(input); err != nil {
		return User{}, err
	}
	if !validation.IsValidEmail(input.Email) {
		return User{}, &validation.Error{Fields: map[string]string{"email": "must be a valid email address"}}
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:     strings.TrimSpace(input.Username),
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate resolves an email/password pair to a user. Unknown emails
// and wrong passwords collapse into ErrInvalidCredentials so responses do
// not reveal which part failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	} else if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}

	if !user.PasswordMatches(s.hasher, password) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}
