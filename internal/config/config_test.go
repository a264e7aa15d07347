package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
Bot:
  Transport: discord
DiscordBot:
  Token: abc
PostgreSQL:
  Host: db.internal
  Port: 6543
  DBName: ledger
Expense:
  Timezone: Europe/Rome
  PendingTTL: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportDiscord, cfg.Bot.Transport)
	assert.Equal(t, "abc", cfg.DiscordBot.Token)
	assert.Equal(t, "db.internal", cfg.PostgreSQL.Host)
	assert.Equal(t, 6543, cfg.PostgreSQL.Port)
	assert.Equal(t, "ledger", cfg.PostgreSQL.DBName)
	assert.Equal(t, "postgres", cfg.PostgreSQL.User)
	assert.Equal(t, 10, cfg.PostgreSQL.PoolMaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Expense.PendingTTL)
	assert.Equal(t, "Europe/Rome", cfg.Location().String())
	assert.Equal(t, "!", cfg.CommandPrefix())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
TelegramBot:
  Token: from-file
Storage:
  Backend: memory
`)
	t.Setenv("TELEGRAMBOT_TOKEN", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TelegramBot.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "/", cfg.CommandPrefix())
	assert.Equal(t, 24*time.Hour, cfg.Expense.PendingTTL)
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("TELEGRAMBOT_TOKEN", "tok")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.PostgreSQL.Host)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Bot:         BotConfig{Transport: TransportTelegram},
			TelegramBot: TelegramBotConfig{Token: "t"},
			PostgreSQL:  PostgreSQLConfig{Host: "h", DBName: "d"},
			Storage:     StorageConfig{Backend: BackendPostgres},
			Expense:     ExpenseConfig{Timezone: "UTC"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.TelegramBot.Token = ""
	assert.ErrorContains(t, cfg.Validate(), "telegram bot token")

	cfg = base()
	cfg.Bot.Transport = TransportDiscord
	assert.ErrorContains(t, cfg.Validate(), "discord bot token")

	cfg = base()
	cfg.Bot.Transport = "irc"
	assert.ErrorContains(t, cfg.Validate(), "unknown bot transport")

	cfg = base()
	cfg.PostgreSQL.Host = ""
	assert.ErrorContains(t, cfg.Validate(), "database configuration")

	cfg = base()
	cfg.PostgreSQL.Host = ""
	cfg.Storage.Backend = BackendMemory
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Expense.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "invalid expense timezone")
}
