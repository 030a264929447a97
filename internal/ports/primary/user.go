package primary

import "context"

// UserService defines the primary port for user operations.
type UserService interface {
	// CreateUser creates a new user.
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// CreateUserRequest contains parameters for creating a user.
type CreateUserRequest struct {
	Username    string
	DisplayName string
}

// User represents a user at the port boundary.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}
