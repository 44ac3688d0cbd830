package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method Create inserts a user and sets its generated ID.
	//
	// A unique key violation is returned as *models.ConflictError.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID. A missing row is models.ErrNotFound.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method GetByEmail retrieves a user by email. A missing row is models.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method FindConflicts reports which of email and username are already used by a user other than excludeID.
	FindConflicts(ctx context.Context, email, username string, excludeID int) ([]string, error)
	// Method List retrieves all users ordered by ID.
	List(ctx context.Context) ([]models.User, error)
	// Method Update sets username and email, and the role when it is not nil, returning the stored row.
	Update(ctx context.Context, userID int, username, email string, role *models.Role) (*models.User, error)
	// Method Delete removes a user. A missing row is models.ErrNotFound.
	Delete(ctx context.Context, userID int) error
}

// PasswordHasher hashes and compares passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	CompareDummy(password string)
}

// TokenIssuer signs identity tokens
type TokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

type authService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *authService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account with the user role and signs it in
//
// Every violated input rule is reported at once. Taken email and username are
// reported as *models.ConflictError naming each field.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	if err := validateCredentials(username, email, req.Password); err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, email, username, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))
	return s.issue(user.Public())
}

// Login verifies credentials and issues a token
//
// An unknown email and a wrong password both return models.ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, models.ErrMissingCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		s.hasher.CompareDummy(req.Password)
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		return nil, models.ErrInvalidCredentials
	}

	return s.issue(user.Public())
}

// VerifySession re-reads the token subject so deleted accounts are rejected
func (s *authService) VerifySession(ctx context.Context, userID int) (*models.PublicUser, error) {
	return s.GetProfile(ctx, userID)
}

// GetProfile returns the stored projection of the caller's own row
func (s *authService) GetProfile(ctx context.Context, userID int) (*models.PublicUser, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// UpdateProfile changes the caller's username and email and re-issues a token with the new claims
//
// Previously issued tokens stay valid until they expire.
func (s *authService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	if err := models.NewValidationError(validateIdentity(username, email)); err != nil {
		return nil, err
	}

	if err := s.checkConflicts(ctx, email, username, userID); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, userID, username, email, nil)
	if err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) || errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.issue(user.Public())
}

func (s *authService) checkConflicts(ctx context.Context, email, username string, excludeID int) error {
	fields, err := s.repo.FindConflicts(ctx, email, username, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check uniqueness: %w", err)
	}
	if len(fields) > 0 {
		return &models.ConflictError{Fields: fields}
	}
	return nil
}

func (s *authService) issue(user models.PublicUser) (*models.AuthResult, error) {
	user.Role = user.Role.OrDefault()
	token, err := s.tokens.Issue(auth.IdentityOf(user))
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err), zap.Int("userId", user.ID))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResult{
		Token:     token,
		User:      user,
		ExpiresIn: int(auth.TokenLifetime.Seconds()),
	}, nil
}
