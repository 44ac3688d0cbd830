package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func existingUser() *models.User {
	return &models.User{ID: 1, Username: "bob", Email: "bob@example.com", PasswordHash: "hashed:secret!pass", Role: models.RoleUser}
}

func TestNewAuthService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := newMockUserRepository()
	hasher := &mockHasher{}
	tokens := &mockTokenIssuer{}

	svc := NewAuthService(repo, hasher, tokens, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
	assert.Equal(t, hasher, svc.hasher)
	assert.Equal(t, tokens, svc.tokens)
	assert.Equal(t, logger, svc.logger)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name           string
		req            models.RegisterRequest
		repo           *mockUserRepository
		hasher         *mockHasher
		expectedErrors []string
		expectedFields []string
		expectedError  bool
	}{
		{
			name: "success",
			req:  models.RegisterRequest{Username: "ann", Email: "ann@x.com", Password: "abcdefg!"},
			repo: newMockUserRepository(existingUser()),
		},
		{
			name: "normalizes email and username",
			req:  models.RegisterRequest{Username: "  ann ", Email: " Ann@X.com ", Password: "abcdefg!"},
			repo: newMockUserRepository(),
		},
		{
			name:           "missing fields",
			req:            models.RegisterRequest{Username: "ann", Email: "", Password: "abcdefg!"},
			repo:           newMockUserRepository(),
			expectedError:  true,
			expectedErrors: []string{msgRequiredFields},
		},
		{
			name:           "short password without special character reports both rules",
			req:            models.RegisterRequest{Username: "ann", Email: "ann@x.com", Password: "short1"},
			repo:           newMockUserRepository(),
			expectedError:  true,
			expectedErrors: []string{msgPasswordTooShort, msgPasswordSpecialChar},
		},
		{
			name:           "every rule collected",
			req:            models.RegisterRequest{Username: "ann", Email: "ann@x", Password: "abc"},
			repo:           newMockUserRepository(),
			expectedError:  true,
			expectedErrors: []string{msgInvalidEmail, msgPasswordTooShort, msgPasswordSpecialChar},
		},
		{
			name:           "email taken names only email",
			req:            models.RegisterRequest{Username: "other", Email: "bob@example.com", Password: "abcdefg!"},
			repo:           newMockUserRepository(existingUser()),
			expectedError:  true,
			expectedFields: []string{models.FieldEmail},
		},
		{
			name:           "username taken names only username",
			req:            models.RegisterRequest{Username: "bob", Email: "new@example.com", Password: "abcdefg!"},
			repo:           newMockUserRepository(existingUser()),
			expectedError:  true,
			expectedFields: []string{models.FieldUsername},
		},
		{
			name:           "both taken",
			req:            models.RegisterRequest{Username: "BOB", Email: "bob@example.com", Password: "abcdefg!"},
			repo:           newMockUserRepository(existingUser()),
			expectedError:  true,
			expectedFields: []string{models.FieldEmail, models.FieldUsername},
		},
		{
			name: "insert race surfaces as conflict",
			req:  models.RegisterRequest{Username: "ann", Email: "ann@x.com", Password: "abcdefg!"},
			repo: func() *mockUserRepository {
				r := newMockUserRepository()
				r.createErr = &models.ConflictError{Fields: []string{models.FieldEmail}}
				return r
			}(),
			expectedError:  true,
			expectedFields: []string{models.FieldEmail},
		},
		{
			name:          "hash error",
			req:           models.RegisterRequest{Username: "ann", Email: "ann@x.com", Password: "abcdefg!"},
			repo:          newMockUserRepository(),
			hasher:        &mockHasher{hashErr: errors.New("hash error")},
			expectedError: true,
		},
		{
			name: "repository error",
			req:  models.RegisterRequest{Username: "ann", Email: "ann@x.com", Password: "abcdefg!"},
			repo: func() *mockUserRepository {
				r := newMockUserRepository()
				r.err = errors.New("database error")
				return r
			}(),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := zap.NewDevelopment()
			hasher := tt.hasher
			if hasher == nil {
				hasher = &mockHasher{}
			}
			tokens := &mockTokenIssuer{token: "signed"}
			svc := NewAuthService(tt.repo, hasher, tokens, logger)

			result, err := svc.Register(context.Background(), &tt.req)

			if tt.expectedError {
				require.Error(t, err)
				assert.Nil(t, result)
				if tt.expectedErrors != nil {
					var verr *models.ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.expectedErrors, verr.Errors)
				}
				if tt.expectedFields != nil {
					var conflict *models.ConflictError
					require.ErrorAs(t, err, &conflict)
					assert.Equal(t, tt.expectedFields, conflict.Fields)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "signed", result.Token)
			assert.Equal(t, "ann", result.User.Username)
			assert.Equal(t, "ann@x.com", result.User.Email)
			assert.Equal(t, models.RoleUser, result.User.Role)
			assert.Equal(t, 3600, result.ExpiresIn)

			stored, err := tt.repo.GetByID(context.Background(), result.User.ID)
			require.NoError(t, err)
			assert.Equal(t, "hashed:abcdefg!", stored.PasswordHash)
			assert.Equal(t, models.RoleUser, stored.Role)

			require.Len(t, tokens.issued, 1)
			assert.Equal(t, auth.Identity{ID: stored.ID, Email: stored.Email, Username: stored.Username, Role: stored.Role}, tokens.issued[0])
		})
	}
}

func TestAuthService_Register_TokenClaimsMatchStoredRow(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := newMockUserRepository(existingUser())
	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)
	svc := NewAuthService(repo, auth.NewPasswordHasher(4), tokens, logger)

	result, err := svc.Register(context.Background(), &models.RegisterRequest{Username: "ann", Email: "ann@x.com", Password: "abcdefg!"})
	require.NoError(t, err)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, stored.Email, claims.Email)
	assert.Equal(t, stored.Username, claims.Username)
	assert.Equal(t, stored.Role, claims.Role)
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		req           models.LoginRequest
		repoErr       error
		expectedErr   error
		expectedError bool
		dummyCalls    int
		compareCalls  int
	}{
		{
			name:         "success",
			req:          models.LoginRequest{Email: "bob@example.com", Password: "secret!pass"},
			compareCalls: 1,
		},
		{
			name:         "email is matched case-insensitively",
			req:          models.LoginRequest{Email: " BOB@example.com", Password: "secret!pass"},
			compareCalls: 1,
		},
		{
			name:          "wrong password",
			req:           models.LoginRequest{Email: "bob@example.com", Password: "wrong!pass"},
			expectedError: true,
			expectedErr:   models.ErrInvalidCredentials,
			compareCalls:  1,
		},
		{
			name:          "unknown email",
			req:           models.LoginRequest{Email: "nobody@example.com", Password: "secret!pass"},
			expectedError: true,
			expectedErr:   models.ErrInvalidCredentials,
			dummyCalls:    1,
		},
		{
			name:          "missing password",
			req:           models.LoginRequest{Email: "bob@example.com"},
			expectedError: true,
			expectedErr:   models.ErrMissingCredentials,
		},
		{
			name:          "repository error",
			req:           models.LoginRequest{Email: "bob@example.com", Password: "secret!pass"},
			repoErr:       errors.New("database error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := zap.NewDevelopment()
			repo := newMockUserRepository(existingUser())
			repo.err = tt.repoErr
			hasher := &mockHasher{}
			svc := NewAuthService(repo, hasher, &mockTokenIssuer{token: "signed"}, logger)

			result, err := svc.Login(context.Background(), &tt.req)

			if tt.expectedError {
				require.Error(t, err)
				assert.Nil(t, result)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				} else {
					assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "signed", result.Token)
				assert.Equal(t, 1, result.User.ID)
				assert.Equal(t, 3600, result.ExpiresIn)
			}
			assert.Equal(t, tt.dummyCalls, hasher.dummyCalls)
			assert.Equal(t, tt.compareCalls, hasher.compareCalls)
		})
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	svc := NewAuthService(newMockUserRepository(existingUser()), &mockHasher{}, &mockTokenIssuer{token: "signed"}, logger)

	_, unknownErr := svc.Login(context.Background(), &models.LoginRequest{Email: "nobody@example.com", Password: "secret!pass"})
	_, wrongErr := svc.Login(context.Background(), &models.LoginRequest{Email: "bob@example.com", Password: "nope!nope"})

	require.Error(t, unknownErr)
	assert.Equal(t, unknownErr, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthService_Login_NullRoleIssuedAsUser(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	user := existingUser()
	user.Role = ""
	tokens := &mockTokenIssuer{token: "signed"}
	svc := NewAuthService(newMockUserRepository(user), &mockHasher{}, tokens, logger)

	result, err := svc.Login(context.Background(), &models.LoginRequest{Email: "bob@example.com", Password: "secret!pass"})

	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, result.User.Role)
	require.Len(t, tokens.issued, 1)
	assert.Equal(t, models.RoleUser, tokens.issued[0].Role)
}

func TestAuthService_VerifySession(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	svc := NewAuthService(newMockUserRepository(existingUser()), &mockHasher{}, &mockTokenIssuer{}, logger)

	user, err := svc.VerifySession(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	user, err = svc.VerifySession(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, user)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	alice := &models.User{ID: 2, Username: "alice", Email: "alice@example.com", Role: models.RoleAdmin}

	tests := []struct {
		name           string
		userID         int
		req            models.UpdateProfileRequest
		updateErr      error
		expectedErr    error
		expectedErrors []string
		expectedFields []string
		expectedError  bool
	}{
		{
			name:   "success",
			userID: 1,
			req:    models.UpdateProfileRequest{Username: "bobby", Email: "bobby@example.com"},
		},
		{
			name:   "keeping own values is not a conflict",
			userID: 1,
			req:    models.UpdateProfileRequest{Username: "bob", Email: "bob@example.com"},
		},
		{
			name:           "username of another user",
			userID:         1,
			req:            models.UpdateProfileRequest{Username: "alice", Email: "bob@example.com"},
			expectedError:  true,
			expectedFields: []string{models.FieldUsername},
		},
		{
			name:           "invalid email",
			userID:         1,
			req:            models.UpdateProfileRequest{Username: "bob", Email: "bob"},
			expectedError:  true,
			expectedErrors: []string{msgInvalidEmail},
		},
		{
			name:           "missing username",
			userID:         1,
			req:            models.UpdateProfileRequest{Email: "bob@example.com"},
			expectedError:  true,
			expectedErrors: []string{msgRequiredProfile},
		},
		{
			name:          "row vanished",
			userID:        9,
			req:           models.UpdateProfileRequest{Username: "ghost", Email: "ghost@example.com"},
			expectedError: true,
			expectedErr:   models.ErrNotFound,
		},
		{
			name:          "update error",
			userID:        1,
			req:           models.UpdateProfileRequest{Username: "bobby", Email: "bobby@example.com"},
			updateErr:     errors.New("database error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := zap.NewDevelopment()
			repo := newMockUserRepository(existingUser(), alice)
			repo.updateErr = tt.updateErr
			tokens := &mockTokenIssuer{token: "fresh"}
			svc := NewAuthService(repo, &mockHasher{}, tokens, logger)

			result, err := svc.UpdateProfile(context.Background(), tt.userID, &tt.req)

			if tt.expectedError {
				require.Error(t, err)
				assert.Nil(t, result)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				if tt.expectedErrors != nil {
					var verr *models.ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.expectedErrors, verr.Errors)
				}
				if tt.expectedFields != nil {
					var conflict *models.ConflictError
					require.ErrorAs(t, err, &conflict)
					assert.Equal(t, tt.expectedFields, conflict.Fields)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "fresh", result.Token)
			assert.Equal(t, tt.req.Username, result.User.Username)
			require.Len(t, tokens.issued, 1)
			assert.Equal(t, tt.req.Email, tokens.issued[0].Email)
			assert.Equal(t, models.RoleUser, tokens.issued[0].Role)
		})
	}
}
