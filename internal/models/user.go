package models

import "time"

// Role is the privilege level carried in a user's token
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// OrDefault returns RoleUser for an unset role
func (r Role) OrDefault() Role {
	if r == "" {
		return RoleUser
	}
	return r
}

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the projection of the user that is safe to send to clients
func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role.OrDefault(),
	}
	if !u.CreatedAt.IsZero() {
		createdAt := u.CreatedAt
		p.CreatedAt = &createdAt
	}
	return p
}

// PublicUser is the user representation returned by the API
type PublicUser struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents a self-service profile update
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUserRequest represents an admin request to create a user
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest represents an admin request to edit a user
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// AuthResult is returned by every operation that issues a token
type AuthResult struct {
	Token     string
	User      PublicUser
	ExpiresIn int
}
