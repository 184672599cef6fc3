package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
logging:
  level: debug
  format: console
auth:
  jwt_secret: from-file
  session_ttl: 2h
  operators:
    - id: op-1
      name: Ada Ops
      email: ada@recliq.test
      access_key: s3cret
      roles: [operations]
source:
  driver: sqlite
  sqlite_path: ./backoffice.db
`)
	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		"RECLIQ_JWT_SECRET":   "from-env",
		"RECLIQ_ACTION_ROLES": "admin, finance ,",
		"RECLIQ_REDIS_DB":     "3",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/admin", cfg.Server.BasePath)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"admin", "finance"}, cfg.Auth.ActionRoles)
	require.Len(t, cfg.Auth.Operators, 1)
	assert.Equal(t, []string{"operations"}, cfg.Auth.Operators[0].Roles)
	assert.Equal(t, SourceSQLite, cfg.Source.Driver)
	assert.Equal(t, 3, cfg.Sessions.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.Charts.CacheTTL)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "server:\n  adress: \":1\"\n")
	_, err := LoadWithEnv(path, envMap(map[string]string{"RECLIQ_JWT_SECRET": "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adress")
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{"RECLIQ_JWT_SECRET": "x"}))
	require.NoError(t, err)
	assert.Equal(t, SessionsMemory, cfg.Sessions.Driver)
	assert.Equal(t, SourceStatic, cfg.Source.Driver)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{"RECLIQ_SESSION_TTL": "soon"}))
	require.Error(t, err)
	err = cfg.ApplyEnv(envMap(map[string]string{"RECLIQ_REDIS_DB": "one"}))
	require.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Sessions.Driver = SessionsRedis
	cfg.Source.Driver = "ftp"
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.format", "redis_addr", "source.driver"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}
}

func TestValidateServerNeedsSecretAndOperators(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
	assert.Contains(t, err.Error(), "operators")
}
