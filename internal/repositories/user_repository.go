package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// userRepository implements the credential store on top of the users table
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, username, email, password_hash, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var role sql.NullString
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = models.Role(role.String).OrDefault()
	return user, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role.OrDefault())
	if err != nil {
		if conflict := userConflictFromDuplicate(err); conflict != nil {
			return conflict
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// FindConflicts reports which of email and username are already used by a user other than excludeID
//
// Pass excludeID = 0 to check against every row.
func (r *userRepository) FindConflicts(ctx context.Context, email, username string, excludeID int) ([]string, error) {
	query := `
		SELECT email, username
		FROM users
		WHERE (email = ? OR username = ?) AND id <> ?
	`

	rows, err := r.db.QueryContext(ctx, query, email, username, excludeID)
	if err != nil {
		r.logger.Error("failed to check user uniqueness", zap.Error(err))
		return nil, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	defer rows.Close()

	var emailTaken, usernameTaken bool
	for rows.Next() {
		// compared case-insensitively to match the column collation
		var rowEmail, rowUsername string
		if err := rows.Scan(&rowEmail, &rowUsername); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if strings.EqualFold(rowEmail, email) {
			emailTaken = true
		}
		if strings.EqualFold(rowUsername, username) {
			usernameTaken = true
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	var fields []string
	if emailTaken {
		fields = append(fields, models.FieldEmail)
	}
	if usernameTaken {
		fields = append(fields, models.FieldUsername)
	}
	return fields, nil
}

// List retrieves all users ordered by ID
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Update sets username, email and role of a user and returns the stored row
//
// A nil role leaves the current role untouched.
func (r *userRepository) Update(ctx context.Context, userID int, username, email string, role *models.Role) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if role != nil {
		_, err = tx.ExecContext(ctx, `UPDATE users SET username = ?, email = ?, role = ? WHERE id = ?`,
			username, email, *role, userID)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE users SET username = ?, email = ? WHERE id = ?`,
			username, email, userID)
	}
	if err != nil {
		if conflict := userConflictFromDuplicate(err); conflict != nil {
			return nil, conflict
		}
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// RowsAffected is 0 for an unchanged row, so existence is read back instead
	user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to read updated user", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to read updated user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// Delete removes a user; carts and cart items go with it through ON DELETE CASCADE
func (r *userRepository) Delete(ctx context.Context, userID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}
