package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
database:
  driver: sqlite
  path: /tmp/test.db
settlement:
  total_shares: "12"
notify:
  channel_id: "-100123"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN())
	assert.Equal(t, "12", cfg.Settlement.TotalShares)
	assert.Equal(t, "-100123", cfg.Notify.ChannelID)

	// defaults survive for keys absent from the file
	assert.Equal(t, 300, cfg.Scheduler.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenLifespan())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadHasNoAuthCredentialDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.Secret)
	assert.Empty(t, cfg.Auth.AdminPassword)
	assert.ErrorIs(t, cfg.Auth.Validate(cfg.Server.Mode), ErrWeakSecret)
}

func TestAuthValidate(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		mode   string
		ok     bool
	}{
		{"empty in debug", "", "debug", false},
		{"blank in release", "   ", "release", false},
		{"short allowed in debug", "dev", "debug", true},
		{"example value in debug", "change-me", "debug", true},
		{"example value in release", "change-me", "release", false},
		{"old default in release", "memberadmin-secret", "release", false},
		{"short in release", "0123456789", "release", false},
		{"private in release", "k3v9-Qe2m-71zz-Lp0a", "release", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthConfig{Secret: tt.secret}.Validate(tt.mode)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakSecret)
			}
		})
	}
}

func TestSecretFromEnv(t *testing.T) {
	t.Setenv("AUTH_SECRET", "k3v9-Qe2m-71zz-Lp0a")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Auth.Validate(cfg.Server.Mode))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", pg.DSN())

	my := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "n"}
	assert.Equal(t, "u:p@tcp(db:3306)/n?charset=utf8mb4&parseTime=true&loc=Local", my.DSN())
}
