package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/tidecal")
	t.Setenv("OPERATOR_USERNAME", "operator")
	t.Setenv("OPERATOR_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "master-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "inline", cfg.Blob.Backend)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.Equal(t, 5<<20, cfg.Image.MaxBytes)
	require.Equal(t, 300, cfg.Image.Size)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPERATOR_USERNAME", "")
	t.Setenv("OPERATOR_SECRET", "")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Session.TTL)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadInvalidBlobBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BLOB_BACKEND", "tape")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "BLOB_BACKEND")
}

func TestLoadS3RequiresBucket(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BLOB_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "S3_BUCKET")
}

func TestLoadFileOverlay(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPERATOR_USERNAME", "operator")
	t.Setenv("OPERATOR_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "master-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  url: postgres://file-host:5432/tidecal
server:
  port: 9999
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "postgres://file-host:5432/tidecal", cfg.Database.URL)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvWinsOverFileForRequired(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  url: postgres://file-host:5432/tidecal
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost:5432/tidecal", cfg.Database.URL)
}
