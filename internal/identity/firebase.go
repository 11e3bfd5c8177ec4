package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"habitTrackerAPI/internal/types/user"
)

// FirebaseAuth verifies Firebase ID tokens and serves as the directory for
// Firebase users.
type FirebaseAuth struct {
	client *auth.Client
}

func NewFirebaseAuth(ctx context.Context, app *firebase.App) (*FirebaseAuth, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %w", err)
	}
	return &FirebaseAuth{client: client}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

func (f *FirebaseAuth) Verify(ctx context.Context, token string) (*Identity, error) {
	tok, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Identity{
		UID:         tok.UID,
		Email:       claimString(tok.Claims, "email"),
		DisplayName: claimString(tok.Claims, "name"),
		PhotoURL:    claimString(tok.Claims, "picture"),
	}, nil
}

func profileFromRecord(u *auth.UserRecord) *user.Profile {
	return &user.Profile{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

func (f *FirebaseAuth) Lookup(ctx context.Context, uid string) (*user.Profile, error) {
	u, err := f.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return profileFromRecord(u), nil
}

func (f *FirebaseAuth) UpdatePhoto(ctx context.Context, uid, photoURL string) (*user.Profile, error) {
	u, err := f.client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).PhotoURL(photoURL))
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user photo: %w", err)
	}
	return profileFromRecord(u), nil
}

func (f *FirebaseAuth) SignOut(ctx context.Context, uid string) error {
	if err := f.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
