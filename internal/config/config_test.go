package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/domain"
)

const validYAML = `
server:
  port: 9090
store:
  type: postgres
database:
  driver: pgx
  host: db.internal
  user: library
  database: circulation
  max_open_conns: 20
jwt:
  secret: 0123456789abcdef0123456789abcdef
email:
  sendgrid_api_key: SG.test
  from_email: desk@library.example
circulation:
  loan_period_days: 14
  max_conflict_retries: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverPGX, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 14*24*time.Hour, cfg.LoanPeriod())
	assert.Equal(t, 5, cfg.Circulation.MaxConflictRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.RetryBackoff())
	assert.Equal(t, "0 0 8 * * *", cfg.Scheduler.SendOverdueReminders)
	assert.Equal(t, "postgres://library:@db.internal:5432/circulation?sslmode=disable", cfg.GetDatabaseConnectionString())
	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOAN_PERIOD_DAYS", "7")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Circulation.LoanPeriodDays)
}

func TestLoad_MemoryStoreNeedsNoDatabase(t *testing.T) {
	t.Setenv("STORE_TYPE", StoreMemory)
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Type)
	assert.Equal(t, 31, cfg.Circulation.LoanPeriodDays)
	assert.Equal(t, 3, cfg.Circulation.MaxConflictRetries)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"unknown store", func(c *Config) { c.Store.Type = "redis" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"bad from email", func(c *Config) { c.Email.FromEmail = "not-an-email" }},
		{"sendgrid without sender", func(c *Config) { c.Email.FromEmail = "" }},
		{"loan period too long", func(c *Config) { c.Circulation.LoanPeriodDays = 1000 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validYAML))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSecurityLevels(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("GET /healthz"))
	assert.Equal(t, SecurityPublic, GetSecurityLevel("POST /api/v1/auth/login"))
	assert.Equal(t, SecurityUser, GetSecurityLevel("POST /api/v1/loans"))
	assert.Equal(t, SecurityLibrarian, GetSecurityLevel("POST /api/v1/librarian/loans/confirm"))
	assert.Equal(t, SecurityLibrarian, GetSecurityLevel("GET /unknown"))

	assert.True(t, SecurityUser.Allows(domain.UserRoleUser))
	assert.False(t, SecurityUser.Allows(domain.UserRoleAnonymous))
	assert.False(t, SecurityLibrarian.Allows(domain.UserRoleUser))
	assert.True(t, SecurityLibrarian.Allows(domain.UserRoleLibrarian))
	assert.False(t, SecurityLibrarian.Allows(domain.UserRoleAdmin))
}
