package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevVerifier_RoundTrip(t *testing.T) {
	v := NewDevVerifier("test-secret-key-for-testing-only")

	token, err := v.Mint(Identity{UID: "user_123", Email: "test.user@example.com", DisplayName: "Test User"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", id.UID)
	assert.Equal(t, "test.user@example.com", id.Email)
	assert.Equal(t, "Test User", id.DisplayName)
}

func TestDevVerifier_Rejects(t *testing.T) {
	v := NewDevVerifier("right-secret")
	ctx := context.Background()

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewDevVerifier("wrong-secret").Mint(Identity{UID: "u"}, time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := v.Mint(Identity{UID: "u"}, -time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(ctx, expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		noSub, err := v.Mint(Identity{}, time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, noSub)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "u",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := tok.SignedString([]byte("right-secret"))
		require.NoError(t, err)

		_, err = v.Verify(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMemoryDirectory(t *testing.T) {
	d := NewMemoryDirectory()
	ctx := context.Background()

	p, err := d.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)
	assert.Empty(t, p.PhotoURL)

	p, err = d.UpdatePhoto(ctx, "u1", "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", p.PhotoURL)

	p, err = d.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", p.PhotoURL)

	_, ok := d.SignedOutAt("u1")
	assert.False(t, ok)
	require.NoError(t, d.SignOut(ctx, "u1"))
	_, ok = d.SignedOutAt("u1")
	assert.True(t, ok)
}

func TestIdentity_Profile(t *testing.T) {
	id := &Identity{UID: "u", Email: "e@example.com", DisplayName: "E", PhotoURL: "p"}
	p := id.Profile()
	assert.Equal(t, "u", p.UID)
	assert.Equal(t, "e@example.com", p.Email)
	assert.Equal(t, "E", p.DisplayName)
	assert.Equal(t, "p", p.PhotoURL)
}
