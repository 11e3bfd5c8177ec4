package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("AUTH_PROVIDER", "dev")
	t.Setenv("DEV_AUTH_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3333", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, float64(5), cfg.RateLimit.RPS)
	assert.Equal(t, 30, cfg.RateLimit.Burst)
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.False(t, cfg.Reminders.Enabled)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
store:
  backend: postgres
  database_url: postgres://yaml
auth:
  provider: dev
  dev_secret: from-yaml
app:
  timezone: Europe/Sofia
reminders:
  enabled: true
  cron: "30 19 * * *"
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://env", cfg.Store.DatabaseURL)
	assert.Equal(t, "from-yaml", cfg.Auth.DevSecret)
	assert.Equal(t, "Europe/Sofia", cfg.Location().String())
	assert.True(t, cfg.Reminders.Enabled)
	assert.Equal(t, "30 19 * * *", cfg.Reminders.Cron)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Store.Backend = BackendPostgres },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "mongo" },
			wantErr: "unknown STORE_BACKEND",
		},
		{
			name:    "clerk without key",
			mutate:  func(c *Config) { c.Auth.Provider = AuthClerk },
			wantErr: "CLERK_SECRET_KEY",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.App.Timezone = "Mars/Olympus" },
			wantErr: "APP_TIMEZONE",
		},
		{
			name: "bad cron",
			mutate: func(c *Config) {
				c.Reminders.Enabled = true
				c.Reminders.Cron = "every evening"
			},
			wantErr: "REMINDER_CRON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Store.Backend = BackendMemory
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REMINDERS_ENABLED", "sometimes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDERS_ENABLED")
}
