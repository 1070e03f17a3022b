package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/frushion/internal/database"
)

const schema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id          VARCHAR(36) PRIMARY KEY,
		session_id  VARCHAR(36) NOT NULL DEFAULT '',
		mode        VARCHAR(32) NOT NULL,
		skin_tone   VARCHAR(64) NOT NULL DEFAULT '',
		texture     VARCHAR(64) NOT NULL DEFAULT '',
		elasticity  VARCHAR(64) NOT NULL DEFAULT '',
		hydration   VARCHAR(64) NOT NULL DEFAULT '',
		expression  VARCHAR(64) NOT NULL DEFAULT '',
		emoji       VARCHAR(16) NOT NULL DEFAULT '',
		confidence  DOUBLE NOT NULL DEFAULT 0,
		score       VARCHAR(32) NOT NULL DEFAULT '',
		created_at  DATETIME(3) NOT NULL,
		INDEX idx_analyses_created_at (created_at)
	) DEFAULT CHARSET = utf8mb4
`

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
// Timestamps are parsed into time.Time and stored in UTC.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MariaDB DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := &Pool{db: db}
	if err := pool.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return pool, nil
}

// Ping checks that the server answers.
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping MariaDB: %w", err)
	}
	return nil
}

// EnsureSchema creates the analyses table when it is missing.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create analyses table: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Initialize connects to MariaDB, creates the schema and registers it as the active storage backend.
func Initialize(dsn string) (*Pool, error) {
	pool, err := NewPool(dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.EnsureSchema(context.Background()); err != nil {
		_ = pool.Close()
		return nil, err
	}

	repo := NewAnalysisRepository(pool)
	database.RegisterBackend("mariadb", func() database.AnalysisWriter { return repo })
	return pool, nil
}
