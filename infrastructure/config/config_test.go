package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecretsPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "stocksence.db"))
	path := filepath.Join(dir, "secrets.env")
	t.Setenv("SECRETS_FILE", path)
	return path
}

func TestFromEnv_DevelopmentGeneratesMissingSecrets(t *testing.T) {
	path := setSecretsPath(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_SECRET", "")
	t.Setenv("BACKUP_KEY", "backup")
	t.Setenv("SESSION_SIGNING_KEY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Len(t, cfg.Secrets.AppSecret, 64)
	assert.Equal(t, "backup", cfg.Secrets.BackupKey)
	assert.ElementsMatch(t, []string{"APP_SECRET", "SESSION_SIGNING_KEY"}, cfg.Generated)

	stored, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Secrets.AppSecret, stored["APP_SECRET"])
	assert.NotContains(t, stored, "SESSION_SIGNING_KEY")
	assert.NotContains(t, stored, "BACKUP_KEY")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFromEnv_GeneratedSecretsSurviveRestart(t *testing.T) {
	setSecretsPath(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_SECRET", "")
	t.Setenv("BACKUP_KEY", "")
	t.Setenv("SESSION_SIGNING_KEY", "")

	first, err := FromEnv()
	require.NoError(t, err)
	second, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, first.Secrets.AppSecret, second.Secrets.AppSecret)
	assert.Equal(t, first.Secrets.BackupKey, second.Secrets.BackupKey)
	assert.NotEqual(t, first.Secrets.AppSecret, first.Secrets.BackupKey)
	assert.Equal(t, []string{"SESSION_SIGNING_KEY"}, second.Generated)
}

func TestFromEnv_EnvironmentWinsOverSecretsFile(t *testing.T) {
	path := setSecretsPath(t)
	require.NoError(t, godotenv.Write(map[string]string{"APP_SECRET": "from-file", "BACKUP_KEY": "file-backup"}, path))
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_SECRET", "from-env")
	t.Setenv("BACKUP_KEY", "")
	t.Setenv("SESSION_SIGNING_KEY", "s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Secrets.AppSecret)
	assert.Equal(t, "file-backup", cfg.Secrets.BackupKey)
	assert.Empty(t, cfg.Generated)
}

func TestFromEnv_SecretsFileDefaultsNextToDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "shop.db"))
	t.Setenv("SECRETS_FILE", "")
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_SECRET", "a")
	t.Setenv("BACKUP_KEY", "b")
	t.Setenv("SESSION_SIGNING_KEY", "c")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shop.db.secrets"), cfg.Secrets.File)
	_, err = os.Stat(cfg.Secrets.File)
	assert.True(t, os.IsNotExist(err), "nothing is written when every secret is configured")
}

func TestFromEnv_ProductionRequiresSecrets(t *testing.T) {
	path := setSecretsPath(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_SECRET", "a")
	t.Setenv("BACKUP_KEY", "")
	t.Setenv("SESSION_SIGNING_KEY", "c")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "BACKUP_KEY")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "production never writes generated secrets")

	t.Setenv("BACKUP_KEY", "b")
	t.Setenv("SESSION_SIGNING_KEY", "")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "SESSION_SIGNING_KEY")
}

func TestFromEnv_Defaults(t *testing.T) {
	setSecretsPath(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_MAX_AGE", "not-a-duration")
	t.Setenv("DEMO_FIXTURE_ENABLED", "yes-please")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Secrets.SessionMaxAge)
	assert.False(t, cfg.Demo.Enabled)
}

func TestDemoFixtureAllowed(t *testing.T) {
	cases := []struct {
		name string
		env  string
		demo DemoConfig
		want bool
	}{
		{"enabled in development", "development", DemoConfig{Enabled: true, Username: "demo", Password: "demo123"}, true},
		{"never in production", "production", DemoConfig{Enabled: true, Username: "demo", Password: "demo123"}, false},
		{"disabled flag", "development", DemoConfig{Enabled: false, Username: "demo", Password: "demo123"}, false},
		{"missing credentials", "development", DemoConfig{Enabled: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Env: tc.env}, Demo: tc.demo}
			assert.Equal(t, tc.want, cfg.DemoFixtureAllowed())
		})
	}
}
