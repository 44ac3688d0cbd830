package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

type userService struct {
	repo   UserRepository
	hasher PasswordHasher
	logger *zap.Logger
}

// NewUserService creates the service behind the admin user console
func NewUserService(repo UserRepository, hasher PasswordHasher, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// List returns every user as a public projection
func (s *userService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		result = append(result, u.Public())
	}
	return result, nil
}

// GetByID returns one user
func (s *userService) GetByID(ctx context.Context, userID int) (*models.PublicUser, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

// Create adds an account with an explicit role, validated like a registration
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.PublicUser, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	role := req.Role.OrDefault()

	if err := validateCredentials(username, email, req.Password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, models.NewValidationError([]string{msgInvalidRole})
	}

	fields, err := s.repo.FindConflicts(ctx, email, username, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	if len(fields) > 0 {
		return nil, &models.ConflictError{Fields: fields}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created by admin", zap.Int("userId", user.ID), zap.String("role", string(role)))
	public := user.Public()
	return &public, nil
}

// Update edits username, email and role of any user
//
// An empty role keeps the stored one.
func (s *userService) Update(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.PublicUser, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	errs := validateIdentity(username, email)
	var role *models.Role
	if req.Role != "" {
		if !req.Role.Valid() {
			errs = append(errs, msgInvalidRole)
		}
		r := req.Role
		role = &r
	}
	if err := models.NewValidationError(errs); err != nil {
		return nil, err
	}

	fields, err := s.repo.FindConflicts(ctx, email, username, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	if len(fields) > 0 {
		return nil, &models.ConflictError{Fields: fields}
	}

	user, err := s.repo.Update(ctx, userID, username, email, role)
	if err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) || errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// Delete removes a user together with their cart
func (s *userService) Delete(ctx context.Context, userID int) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", zap.Int("userId", userID))
	return nil
}
