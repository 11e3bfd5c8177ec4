package firebaseapp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	t.Run("invalid base64", func(t *testing.T) {
		_, err := ClientOptions(Credentials{ServiceAccountJSON: "%%%not-base64"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("valid base64", func(t *testing.T) {
		opts, err := ClientOptions(Credentials{ServiceAccountJSON: "e30="})
		require.NoError(t, err)
		assert.Len(t, opts, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ClientOptions(Credentials{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
		require.Error(t, err)
	})

	t.Run("default credentials", func(t *testing.T) {
		opts, err := ClientOptions(Credentials{ProjectID: "demo"})
		require.NoError(t, err)
		assert.Empty(t, opts)
	})
}
