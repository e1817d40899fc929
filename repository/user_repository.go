package repository

import (
	"context"
	"errors"

	"github.com/rayhandestian/quickbites/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore reads user records owned by the app backend. Implementations
// return ErrUserNotFound when no record exists for the id.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}
