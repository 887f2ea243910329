package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/storage/docsql"
	"github.com/deptsite/deptcms/pkg/apperror"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Client struct {
	DB *sql.DB
}

func NewClient(ctx context.Context, cfg *config.StorageConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", apperror.ErrStorageUnavailable, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	return &Client{DB: db}, nil
}

// Migrate applies the embedded schema migrations.
func (c *Client) Migrate(ctx context.Context) error {
	return docsql.Migrate(ctx, c.DB, "postgres", migrationsFS)
}

// Store wraps the connection in the shared document store.
func (c *Client) Store() *docsql.Store {
	return docsql.NewStore(c.DB, Dialect{})
}

func (c *Client) Close() error {
	return c.DB.Close()
}
