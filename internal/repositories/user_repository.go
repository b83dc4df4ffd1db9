package repositories

import (
	"errors"

	"invest/internal/models"
)

var (
	// ErrDuplicateUsername is returned when registering a username that already exists.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials is returned when no user matches both username and password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (int, error)
	GetByID(id int) (models.User, error)
	Count() int
}
