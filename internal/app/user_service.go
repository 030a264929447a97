package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/levelup/internal/ports/primary"
	"github.com/example/levelup/internal/ports/secondary"
)

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userRepo secondary.UserRepository
}

// NewUserService creates a new UserService with injected dependencies.
func NewUserService(userRepo secondary.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{userRepo: userRepo}
}

// CreateUser creates a new user. Usernames are unique.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req primary.CreateUserRequest) (*primary.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", primary.ErrInvalidInput)
	}

	record := &secondary.UserRecord{
		Username:    username,
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := s.userRepo.Create(ctx, record); err != nil {
		if errors.Is(err, secondary.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q is taken", primary.ErrInvalidInput, username)
		}
		return nil, &primary.PersistenceError{Op: "create user", Err: err}
	}

	return s.GetUser(ctx, record.ID)
}

// GetUser retrieves a user by ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*primary.User, error) {
	record, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("user %d", userID), "get user", err)
	}
	return recordToUser(record), nil
}

// GetUserByUsername retrieves a user by username.
func (s *UserServiceImpl) GetUserByUsername(ctx context.Context, username string) (*primary.User, error) {
	record, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("user %q", username), "get user", err)
	}
	return recordToUser(record), nil
}

func recordToUser(r *secondary.UserRecord) *primary.User {
	return &primary.User{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		CreatedAt:   r.CreatedAt,
	}
}

var _ primary.UserService = (*UserServiceImpl)(nil)
