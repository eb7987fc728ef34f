package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithViper_Defaults(t *testing.T) {
	path := writeConfig(t, "reports:\n  api_base_url: http://platform.local/api\n")

	cfg, err := LoadWithViper(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "sigec-reports", cfg.App.Name)
	assert.Equal(t, "api", cfg.Reports.Source)
	assert.Equal(t, 200, cfg.Reports.PageSize)
	assert.Equal(t, 30, cfg.Reports.MaxPages)
	assert.True(t, cfg.Reports.NewestFirst)
	assert.Equal(t, 2*time.Minute, cfg.Reports.CacheTTL)
	assert.Equal(t, "none", cfg.Queue.Provider)
	assert.Equal(t, 0.6, cfg.CircuitBreaker.FailureThreshold)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenDuration)

	loc, err := cfg.Reports.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadWithViper_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
reports:
  source: postgres
  page_size: 100
  timezone: America/Sao_Paulo
database:
  url: postgres://file/db
queue:
  provider: nats
`)
	t.Setenv("APP_REPORTS_PAGE_SIZE", "50")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := LoadWithViper(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Reports.Source)
	assert.Equal(t, 50, cfg.Reports.PageSize)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, "nats", cfg.Queue.Provider)
	assert.Equal(t, "America/Sao_Paulo", cfg.Reports.Timezone)
}

func TestLoadWithViper_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"api without base url", "reports:\n  source: api\n"},
		{"postgres without url", "reports:\n  source: postgres\n"},
		{"unknown source", "reports:\n  source: kafka\n"},
		{"unknown queue", "reports:\n  api_base_url: http://x\nqueue:\n  provider: sqs\n"},
		{"bad timezone", "reports:\n  api_base_url: http://x\n  timezone: Mars/Olympus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("REPORTS_API_URL", "")

			_, err := LoadWithViper(viper.New(), writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithViper_MissingExplicitFile(t *testing.T) {
	_, err := LoadWithViper(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
