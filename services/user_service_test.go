package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitTrackerAPI/internal/identity"
	"habitTrackerAPI/internal/types/user"
)

type missingDirectory struct {
	*identity.MemoryDirectory
}

func (missingDirectory) Lookup(ctx context.Context, uid string) (*user.Profile, error) {
	return nil, identity.ErrUserNotFound
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	id := &identity.Identity{UID: "u1", Email: "u1@example.com", DisplayName: "Ann"}

	t.Run("directory fields merged with claims", func(t *testing.T) {
		dir := identity.NewMemoryDirectory()
		_, err := dir.UpdatePhoto(ctx, "u1", "https://example.com/p.png")
		require.NoError(t, err)

		p, err := NewUserService(dir).GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, &user.Profile{UID: "u1", Email: "u1@example.com", DisplayName: "Ann", PhotoURL: "https://example.com/p.png"}, p)
	})

	t.Run("unknown user falls back to claims", func(t *testing.T) {
		p, err := NewUserService(missingDirectory{identity.NewMemoryDirectory()}).GetProfile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "u1@example.com", p.Email)
	})
}

func TestUserService_UpdatePhoto(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(identity.NewMemoryDirectory())
	id := &identity.Identity{UID: "u1"}

	p, err := svc.UpdatePhoto(ctx, id, PresetAvatars[0])
	require.NoError(t, err)
	assert.Equal(t, PresetAvatars[0], p.PhotoURL)

	for _, bad := range []string{"", "not a url", "ftp://example.com/a.png", "javascript:alert(1)"} {
		_, err := svc.UpdatePhoto(ctx, id, bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestUserService_AvatarsAndLogout(t *testing.T) {
	dir := identity.NewMemoryDirectory()
	svc := NewUserService(dir)

	avatars := svc.Avatars()
	assert.Len(t, avatars, 5)
	avatars[0] = "changed"
	assert.NotEqual(t, "changed", PresetAvatars[0])

	require.NoError(t, svc.Logout(context.Background(), "u1"))
	_, ok := dir.SignedOutAt("u1")
	assert.True(t, ok)
}
