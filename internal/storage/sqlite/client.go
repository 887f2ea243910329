package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/storage/docsql"
	"github.com/deptsite/deptcms/pkg/apperror"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Client struct {
	DB *sql.DB
}

// NewClient opens the database file named by cfg.DatabaseURL, for example
// "deptcms.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)".
func NewClient(ctx context.Context, cfg *config.StorageConfig) (*Client, error) {
	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", apperror.ErrStorageUnavailable, err)
	}

	// One connection: SQLite has a single writer, and :memory: databases
	// are per connection.
	db.SetMaxOpenConns(1)

	return &Client{DB: db}, nil
}

func (c *Client) Migrate(ctx context.Context) error {
	return docsql.Migrate(ctx, c.DB, "sqlite3", migrationsFS)
}

func (c *Client) Store() *docsql.Store {
	return docsql.NewStore(c.DB, Dialect{})
}

func (c *Client) Close() error {
	return c.DB.Close()
}
