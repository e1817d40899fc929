package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rayhandestian/quickbites/repository"
)

var (
	ErrMissingIdentifier = errors.New("missing user identifier")
	ErrUserNotFound      = repository.ErrUserNotFound
	ErrTokenUnavailable  = errors.New("user has no delivery token")
)

// RecipientResolver turns a user id into the device token to notify.
type RecipientResolver struct {
	store repository.UserStore
}

func NewRecipientResolver(store repository.UserStore) *RecipientResolver {
	return &RecipientResolver{store: store}
}

// Resolve returns the user's delivery token. The sentinel errors above mark
// expected conditions; any other error is a store failure.
func (r *RecipientResolver) Resolve(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingIdentifier
	}

	user, err := r.store.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup user %s: %w", userID, err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.FCMToken == "" {
		return "", ErrTokenUnavailable
	}
	return user.FCMToken, nil
}
