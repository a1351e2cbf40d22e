package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

// PostgresSink persists history entries in a Postgres table.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// PostgresConfig holds connection settings for the history store.
type PostgresConfig struct {
	URL            string
	MigrationsPath string
	MaxConnections int32
}

// NewPostgresSink connects, runs pending migrations, and returns a ready
// sink. Migrations are idempotent; restarting the service re-applies nothing.
func NewPostgresSink(ctx context.Context, cfg *PostgresConfig, logger *zap.Logger) (*PostgresSink, error) {
	if err := runMigrations(cfg.URL, cfg.MigrationsPath, logger); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history database URL: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create history connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	return &PostgresSink{
		pool:   pool,
		logger: logger.Named("history"),
	}, nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}

func (s *PostgresSink) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO query_history (
			id, question, sql_text, query_type, origin, backend, valid, attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		entry.ID,
		entry.Question,
		entry.SQL,
		string(entry.QueryType),
		string(entry.Origin),
		entry.Backend,
		entry.Valid,
		entry.Attempts,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// FindSimilar loads a window of recent valid entries and ranks them by
// question similarity. Scoring happens here rather than in SQL because the
// metric mixes token overlap with intent-keyword bonuses.
func (s *PostgresSink) FindSimilar(ctx context.Context, question string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 20 {
		limit = 3
	}

	query := `
		SELECT id, question, sql_text, query_type, origin, backend, valid, attempts, created_at
		FROM query_history
		WHERE valid = TRUE
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, candidateWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var qt, origin string
		if err := rows.Scan(&e.ID, &e.Question, &e.SQL, &qt, &origin,
			&e.Backend, &e.Valid, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.QueryType = models.QueryType(qt)
		e.Origin = models.CandidateOrigin(origin)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rankBySimilarity(question, entries, limit), nil
}

// candidateWindow bounds how much history is scored per lookup.
const candidateWindow = 200

var _ Sink = (*PostgresSink)(nil)

// runMigrations applies pending migrations through a short-lived
// database/sql connection; the pgx stdlib driver is registered for this.
func runMigrations(url, migrationsPath string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if err == migrate.ErrNoChange {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Applied migrations", zap.Uint("version", version))
	return nil
}
