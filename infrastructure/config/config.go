package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvProduction = "production"

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Secrets  SecretsConfig
	Google   GoogleConfig
	Demo     DemoConfig
	Log      LogConfig
	Metrics  MetricsConfig

	// Generated lists the secrets this process created. Durable ones were
	// written to Secrets.File; SESSION_SIGNING_KEY lives only in memory.
	Generated []string
}

type ServerConfig struct {
	Addr string
	Env  string
}

type DatabaseConfig struct {
	Path string
	Slot string
}

type SecretsConfig struct {
	// File keeps generated durable secrets outside production.
	File          string
	AppSecret     string
	BackupKey     string
	SessionKey    string
	SessionMaxAge time.Duration
}

type GoogleConfig struct {
	ClientID string
}

type DemoConfig struct {
	Enabled  bool
	Username string
	Password string
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Prefix string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("APP_ADDR", ":8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("SQLITE_PATH", "stocksence.db"),
			Slot: getEnv("STATE_SLOT", "stocksence-store"),
		},
		Secrets: SecretsConfig{
			AppSecret:     getEnv("APP_SECRET", ""),
			BackupKey:     getEnv("BACKUP_KEY", ""),
			SessionKey:    getEnv("SESSION_SIGNING_KEY", ""),
			SessionMaxAge: getEnvAsDuration("SESSION_MAX_AGE", 24*time.Hour),
		},
		Google: GoogleConfig{
			ClientID: strings.TrimSpace(getEnv("GOOGLE_CLIENT_ID", "")),
		},
		Demo: DemoConfig{
			Enabled:  getEnvAsBool("DEMO_FIXTURE_ENABLED", false),
			Username: getEnv("DEMO_USERNAME", ""),
			Password: getEnv("DEMO_PASSWORD", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "stocksence"),
		},
	}

	cfg.Secrets.File = strings.TrimSpace(getEnv("SECRETS_FILE", ""))
	if cfg.Secrets.File == "" {
		cfg.Secrets.File = cfg.Database.Path + ".secrets"
	}
	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveSecrets fills missing secrets outside production. Generated
// APP_SECRET and BACKUP_KEY values are kept in Secrets.File and reused on
// the next start; SESSION_SIGNING_KEY is per process.
func (c *Config) resolveSecrets() error {
	durable := []struct {
		key string
		dst *string
	}{
		{"APP_SECRET", &c.Secrets.AppSecret},
		{"BACKUP_KEY", &c.Secrets.BackupKey},
	}

	stored := map[string]string{}
	for _, s := range durable {
		if strings.TrimSpace(*s.dst) != "" {
			continue
		}
		if c.IsProduction() {
			return fmt.Errorf("%s is required in production", s.key)
		}
		var err error
		if stored, err = readSecretsFile(c.Secrets.File); err != nil {
			return err
		}
		break
	}

	dirty := false
	for _, s := range durable {
		if strings.TrimSpace(*s.dst) != "" {
			continue
		}
		if v := strings.TrimSpace(stored[s.key]); v != "" {
			*s.dst = v
			continue
		}
		v, err := randomKey()
		if err != nil {
			return fmt.Errorf("generate %s: %w", s.key, err)
		}
		*s.dst = v
		stored[s.key] = v
		dirty = true
		c.Generated = append(c.Generated, s.key)
	}
	if dirty {
		if err := writeSecretsFile(c.Secrets.File, stored); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.Secrets.SessionKey) == "" {
		if c.IsProduction() {
			return fmt.Errorf("SESSION_SIGNING_KEY is required in production")
		}
		v, err := randomKey()
		if err != nil {
			return fmt.Errorf("generate SESSION_SIGNING_KEY: %w", err)
		}
		c.Secrets.SessionKey = v
		c.Generated = append(c.Generated, "SESSION_SIGNING_KEY")
	}
	return nil
}

func readSecretsFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}
	return values, nil
}

func writeSecretsFile(path string, values map[string]string) error {
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write secrets file %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict secrets file %s: %w", path, err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, EnvProduction)
}

// DemoFixtureAllowed reports whether the demo tenant may be seeded.
func (c *Config) DemoFixtureAllowed() bool {
	return c.Demo.Enabled && !c.IsProduction() && c.Demo.Username != "" && c.Demo.Password != ""
}

func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
