package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KursPajak/internal/collector"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, collector.DefaultBaseURL, cfg.Source.BaseURL)
	assert.Equal(t, "USD", cfg.Source.Currency)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 13, cfg.Lookback())

	anchor, err := cfg.Anchor()
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, anchor)

	assert.Equal(t, "kurs_pajak_records.xlsx", cfg.Export.Filename)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
source:
  currency: usd
  timeout: 5s
pipeline:
  lookback_weeks: 4
  anchor_weekday: tuesday
schedule:
  cron: "0 0 9 * * 3"
  timezone: UTC
telegram:
  bot_token: from-yaml
  chat_id: "42"
email:
  smtp_server: smtp.example.com
  smtp_user: bot@example.com
  smtp_pass: secret
  to: finance@example.com
`)
	t.Setenv("KURS_TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("KURS_PIPELINE_LOOKBACK_WEEKS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "USD", cfg.Source.Currency)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 8, cfg.Lookback())
	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.True(t, cfg.TelegramEnabled())
	assert.True(t, cfg.EmailEnabled())
	assert.Equal(t, "bot@example.com", cfg.Email.From)

	anchor, err := cfg.Anchor()
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, anchor)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "source: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"lookback too long", "pipeline:\n  lookback_weeks: 60\n", "LookbackWeeks"},
		{"negative lookback", "pipeline:\n  lookback_weeks: -2\n", "LookbackWeeks"},
		{"bad currency", "source:\n  currency: dollar\n", "Currency"},
		{"bad anchor", "pipeline:\n  anchor_weekday: someday\n", "anchor_weekday"},
		{"bad timezone", "schedule:\n  timezone: Mars/Olympus\n", "timezone"},
		{"bad cron", "schedule:\n  cron: every tuesday\n", "schedule.cron"},
		{"token without chat", "telegram:\n  bot_token: abc\n", "'ChatID'"},
		{"bad recipient", "email:\n  to: not-an-address\n", "'To'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoad_ExplicitZeroLookback(t *testing.T) {
	cfg, err := Load(writeConfig(t, "pipeline:\n  lookback_weeks: 0\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.Lookback())

	t.Setenv("KURS_PIPELINE_LOOKBACK_WEEKS", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Lookback())
}

func TestValidate_SenderAddress(t *testing.T) {
	const login = `
email:
  smtp_server: smtp.sendgrid.net
  smtp_user: apikey
  smtp_pass: secret
`
	t.Run("login that is not an address is not used as sender", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, login))
		require.NoError(t, err)
		assert.Empty(t, cfg.Email.From)
		assert.False(t, cfg.EmailEnabled())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("enabled email needs a sender", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, login+"  to: finance@example.com\n"))
		require.NoError(t, err)
		assert.True(t, cfg.EmailEnabled())
		assert.ErrorContains(t, cfg.Validate(), "email.from")
	})

	t.Run("explicit sender", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, login+"  to: finance@example.com\n  from: kurs@example.com\n"))
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate())
	})
}
