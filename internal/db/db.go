package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oatsaysai/spending-in-chat/internal/config"
)

// ConnString builds the key/value connection string for pgx
func ConnString(cfg config.PostgreSQLConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable search_path=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.Schema,
	)
}

// MigrationURL builds the pgx5:// URL understood by golang-migrate
func MigrationURL(cfg config.PostgreSQLConfig) string {
	u := url.URL{
		Scheme: "pgx5",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   "/" + cfg.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if cfg.Schema != "" {
		q.Set("search_path", cfg.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect creates the PostgreSQL connection pool and checks it is reachable
func Connect(ctx context.Context, cfg config.PostgreSQLConfig) (*pgxpool.Pool, error) {
	connectConf, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to parse PostgreSQL config: %w", err)
	}

	if cfg.PoolMaxConns > 0 {
		connectConf.MaxConns = int32(cfg.PoolMaxConns)
	}
	connectConf.HealthCheckPeriod = 15 * time.Second
	connectConf.ConnConfig.ConnectTimeout = 5 * time.Second

	// Set timezone to PGX runtime
	if s := os.Getenv("TZ"); s != "" {
		connectConf.ConnConfig.RuntimeParams["timezone"] = s
	}

	pool, err := pgxpool.NewWithConfig(ctx, connectConf)
	if err != nil {
		return nil, fmt.Errorf("unable to create PostgreSQL connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach PostgreSQL: %w", err)
	}
	return pool, nil
}
