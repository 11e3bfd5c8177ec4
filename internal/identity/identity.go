// Package identity verifies bearer tokens and reads or updates the signed-in
// user's profile in the identity provider.
package identity

import (
	"context"
	"errors"

	"habitTrackerAPI/internal/types/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnsupported  = errors.New("operation not supported by identity provider")
	ErrUserNotFound = errors.New("user not found")
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

func (i *Identity) Profile() *user.Profile {
	return &user.Profile{
		UID:         i.UID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		PhotoURL:    i.PhotoURL,
	}
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type Directory interface {
	Lookup(ctx context.Context, uid string) (*user.Profile, error)
	UpdatePhoto(ctx context.Context, uid, photoURL string) (*user.Profile, error)
	// SignOut revokes the user's sessions.
	SignOut(ctx context.Context, uid string) error
}
