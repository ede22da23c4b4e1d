package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/service/auth"
	"github.com/phrazzld/insight-api/internal/store"
)

// UserService provides account registration and credential verification.
type UserService interface {
	// Register creates a new user with the specified email and password.
	// Returns ErrEmailTaken if the email is already registered.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate verifies the given credentials and returns the matching
	// user. Returns ErrInvalidCredentials for an unknown email or a wrong
	// password; the two cases are indistinguishable to the caller.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore        store.UserStore
	passwordVerifier auth.PasswordVerifier
	db               *sql.DB
	logger           *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	passwordVerifier auth.PasswordVerifier,
	db *sql.DB,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:        userStore,
		passwordVerifier: passwordVerifier,
		db:               db,
		logger:           logger.With("component", "user_service"),
	}
}

// Register creates a new user with the specified email and password.
// Uses a transaction to ensure atomicity of the operation. Concurrent
// signups with the same email are resolved by the database uniqueness
// constraint; the loser receives ErrEmailTaken.
func (s *UserServiceImpl) Register(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		s.logger.Debug("user validation failed during registration",
			"error", err)
		return nil, &ServiceError{
			Operation: "register",
			Message:   "invalid signup data",
			Err:       err,
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)
		return txStore.Create(ctx, user)
	})

	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register with existing email")
			return nil, ErrEmailTaken
		}
		s.logger.Error("failed to save user to database",
			"error", err)
		return nil, &ServiceError{
			Operation: "register",
			Message:   "failed to create user",
			Err:       err,
		}
	}

	s.logger.Info("user registered successfully",
		"user_id", user.ID)

	return user, nil
}

// Authenticate verifies the given credentials and returns the matching user.
func (s *UserServiceImpl) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to retrieve user by email",
			"error", err)
		return nil, &ServiceError{
			Operation: "authenticate",
			Message:   "failed to retrieve user",
			Err:       err,
		}
	}

	if err := s.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password",
			"user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Debug("user authenticated successfully",
		"user_id", user.ID)

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, &ServiceError{
			Operation: "get_user",
			Message:   "failed to retrieve user",
			Err:       err,
		}
	}

	return user, nil
}
