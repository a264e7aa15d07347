package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	TransportTelegram = "telegram"
	TransportDiscord  = "discord"

	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Bot         BotConfig
	TelegramBot TelegramBotConfig
	DiscordBot  DiscordBotConfig
	PostgreSQL  PostgreSQLConfig
	Storage     StorageConfig
	Expense     ExpenseConfig
	RateLimit   RateLimitConfig
	Metrics     MetricsConfig
	Log         LogConfig
}

// BotConfig selects the chat transport
type BotConfig struct {
	Transport string
}

// TelegramBotConfig holds Telegram bot configuration
type TelegramBotConfig struct {
	Token string
	Debug bool
}

// DiscordBotConfig holds Discord bot configuration
type DiscordBotConfig struct {
	Token string
}

// PostgreSQLConfig holds database configuration
type PostgreSQLConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	Schema       string
	PoolMaxConns int
}

// StorageConfig selects where expenses are kept
type StorageConfig struct {
	Backend string
}

// ExpenseConfig holds expense tracking behaviour
type ExpenseConfig struct {
	Timezone   string        // IANA name deciding "today" and "this month"
	PendingTTL time.Duration // 0 keeps an unanswered category prompt open forever
}

// RateLimitConfig holds the per-chat message limiter settings
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Addr string // empty disables the endpoint
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Bot.Transport", TransportTelegram)
	v.SetDefault("TelegramBot.Token", "")
	v.SetDefault("TelegramBot.Debug", false)
	v.SetDefault("DiscordBot.Token", "")

	v.SetDefault("PostgreSQL.Host", "localhost")
	v.SetDefault("PostgreSQL.Port", 5432)
	v.SetDefault("PostgreSQL.User", "postgres")
	v.SetDefault("PostgreSQL.Password", "")
	v.SetDefault("PostgreSQL.DBName", "expenses")
	v.SetDefault("PostgreSQL.Schema", "public")
	v.SetDefault("PostgreSQL.PoolMaxConns", 10)

	v.SetDefault("Storage.Backend", BackendPostgres)

	v.SetDefault("Expense.Timezone", "UTC")
	v.SetDefault("Expense.PendingTTL", "24h")

	v.SetDefault("RateLimit.PerSecond", 1.0)
	v.SetDefault("RateLimit.Burst", 5)

	v.SetDefault("Metrics.Addr", ":9090")

	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "console")
}

// Load reads .env, the YAML file at configPath and the environment, in increasing priority.
// A missing .env or config file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected transport and backend are usable
func (c *Config) Validate() error {
	switch c.Bot.Transport {
	case TransportTelegram:
		if c.TelegramBot.Token == "" {
			return fmt.Errorf("telegram bot token is required")
		}
	case TransportDiscord:
		if c.DiscordBot.Token == "" {
			return fmt.Errorf("discord bot token is required")
		}
	default:
		return fmt.Errorf("unknown bot transport %q", c.Bot.Transport)
	}

	switch c.Storage.Backend {
	case BackendPostgres:
		if c.PostgreSQL.Host == "" || c.PostgreSQL.DBName == "" {
			return fmt.Errorf("database configuration is incomplete")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if _, err := time.LoadLocation(c.Expense.Timezone); err != nil {
		return fmt.Errorf("invalid expense timezone %q: %w", c.Expense.Timezone, err)
	}
	if c.Expense.PendingTTL < 0 {
		return fmt.Errorf("pending ttl must not be negative")
	}
	return nil
}

// Location returns the configured expense timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Expense.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CommandPrefix returns the command prefix of the selected transport
func (c *Config) CommandPrefix() string {
	if c.Bot.Transport == TransportDiscord {
		return "!"
	}
	return "/"
}
