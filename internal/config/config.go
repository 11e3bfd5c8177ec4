package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"habitTrackerAPI/internal/logger"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"

	AuthFirebase = "firebase"
	AuthClerk    = "clerk"
	AuthDev      = "dev"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Store struct {
		Backend     string `yaml:"backend"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"store"`
	Firebase struct {
		ProjectID          string `yaml:"project_id"`
		ServiceAccountJSON string `yaml:"service_account_json"`
		CredentialsFile    string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	Auth struct {
		Provider       string `yaml:"provider"`
		ClerkSecretKey string `yaml:"clerk_secret_key"`
		DevSecret      string `yaml:"dev_secret"`
	} `yaml:"auth"`
	App struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`
	Reminders struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"reminders"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Metrics struct {
		User        string `yaml:"user"`
		Pass        string `yaml:"pass"`
		PprofSecret string `yaml:"pprof_secret"`
	} `yaml:"metrics"`
	Log struct {
		Debug bool   `yaml:"debug"`
		Dir   string `yaml:"dir"`
	} `yaml:"log"`

	location *time.Location
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "3333"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Store.Backend = BackendFirestore
	cfg.Auth.Provider = AuthFirebase
	cfg.App.Timezone = "UTC"
	cfg.Reminders.Cron = "0 20 * * *"
	cfg.RateLimit.RPS = 5
	cfg.RateLimit.Burst = 30
	return cfg
}

// Load layers .env, the optional CONFIG_FILE yaml and the process environment,
// in that order of increasing precedence, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"auth", cfg.Auth.Provider,
		"timezone", cfg.App.Timezone,
		"reminders", cfg.Reminders.Enabled,
	)

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", c.Store.Backend))
	c.Store.DatabaseURL = getEnv("DATABASE_URL", c.Store.DatabaseURL)

	c.Firebase.ProjectID = getEnv("FIREBASE_PROJECT_ID", c.Firebase.ProjectID)
	c.Firebase.ServiceAccountJSON = getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", c.Firebase.ServiceAccountJSON)
	c.Firebase.CredentialsFile = getEnv("FIREBASE_CREDENTIALS_FILE", c.Firebase.CredentialsFile)

	c.Auth.Provider = strings.ToLower(getEnv("AUTH_PROVIDER", c.Auth.Provider))
	c.Auth.ClerkSecretKey = getEnv("CLERK_SECRET_KEY", c.Auth.ClerkSecretKey)
	c.Auth.DevSecret = getEnv("DEV_AUTH_SECRET", c.Auth.DevSecret)

	c.App.Timezone = getEnv("APP_TIMEZONE", c.App.Timezone)
	c.Reminders.Cron = getEnv("REMINDER_CRON", c.Reminders.Cron)

	c.Metrics.User = getEnv("METRICS_USER", c.Metrics.User)
	c.Metrics.Pass = getEnv("METRICS_PASS", c.Metrics.Pass)
	c.Metrics.PprofSecret = getEnv("PPROF_SECRET", c.Metrics.PprofSecret)
	c.Log.Dir = getEnv("LOG_DIR", c.Log.Dir)

	var err error
	if c.Reminders.Enabled, err = getEnvBool("REMINDERS_ENABLED", c.Reminders.Enabled); err != nil {
		return err
	}
	if c.Log.Debug, err = getEnvBool("LOG_DEBUG", c.Log.Debug); err != nil {
		return err
	}

	if v := getEnv("RATE_LIMIT_RPS", ""); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.RateLimit.RPS = rps
	}
	if v := getEnv("RATE_LIMIT_BURST", ""); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.RateLimit.Burst = burst
	}

	return nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendFirestore:
		if c.Firebase.ServiceAccountJSON == "" && c.Firebase.CredentialsFile == "" && c.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("firestore backend needs FIREBASE_SERVICE_ACCOUNT_JSON, FIREBASE_CREDENTIALS_FILE or FIREBASE_PROJECT_ID"))
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Auth.Provider {
	case AuthFirebase:
	case AuthClerk:
		if c.Auth.ClerkSecretKey == "" {
			errs = append(errs, errors.New("CLERK_SECRET_KEY environment variable is not set"))
		}
	case AuthDev:
		if c.Auth.DevSecret == "" {
			errs = append(errs, errors.New("DEV_AUTH_SECRET environment variable is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider))
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err))
	} else {
		c.location = loc
	}

	if c.Reminders.Enabled {
		if _, err := cron.ParseStandard(c.Reminders.Cron); err != nil {
			errs = append(errs, fmt.Errorf("invalid REMINDER_CRON %q: %w", c.Reminders.Cron, err))
		}
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate limit rps and burst must be positive"))
	}

	return errors.Join(errs...)
}

// Location is the zone "today" is computed in. UTC until Validate succeeds.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
