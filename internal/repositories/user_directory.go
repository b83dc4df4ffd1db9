package repositories

import (
	"fmt"
	"sync"

	"invest/internal/models"
	"invest/internal/store"
)

// UserDirectory is a store-backed implementation of UserRepository.
type UserDirectory struct {
	store *store.Store[models.User]
	// mu serialises the duplicate check with the insert that follows it.
	mu sync.Mutex
}

// NewUserDirectory creates a new instance of UserDirectory.
func NewUserDirectory(s *store.Store[models.User]) *UserDirectory {
	return &UserDirectory{
		store: s,
	}
}

// Register adds a user unless the exact username is already taken.
// A persistence error is returned wrapped in store.ErrPersist alongside the
// user, which stays registered for the rest of the process.
func (r *UserDirectory) Register(username, password string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken := r.store.FindAll(func(u models.User) bool { return u.Username == username })
	if len(taken) > 0 {
		return models.User{}, fmt.Errorf("username '%s': %w", username, ErrDuplicateUsername)
	}
	user, err := r.store.Insert(models.User{Username: username, Password: password})
	if err != nil {
		return user, fmt.Errorf("failed to register user %s: %w", username, err)
	}
	return user, nil
}

// Authenticate returns the ID of the first user whose username and password
// both match exactly.
func (r *UserDirectory) Authenticate(username, password string) (int, error) {
	matches := r.store.FindAll(func(u models.User) bool {
		return u.Username == username && u.Password == password
	})
	if len(matches) == 0 {
		return 0, ErrInvalidCredentials
	}
	return matches[0].ID, nil
}

// GetByID retrieves a user by their ID.
func (r *UserDirectory) GetByID(id int) (models.User, error) {
	user, ok := r.store.FindByID(id)
	if !ok {
		return models.User{}, fmt.Errorf("user with ID %d: %w", id, store.ErrNotFound)
	}
	return user, nil
}

// Count returns the number of registered users.
func (r *UserDirectory) Count() int {
	return r.store.Len()
}
