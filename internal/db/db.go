package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/civitashq/trustengine/internal/models"
)

const (
	// FlagThreshold is the pending-flag count at which content is
	// automatically hidden from public view.
	FlagThreshold = 3

	TokenLen = 64 // 64 bytes
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every query
// helper can run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type SharedDB struct {
	db         *pgxpool.Pool
	config     *models.EnvConfig
	logger     zerolog.Logger
	bcryptCost int
	content    *contentRegistry
	matcher    *WatchlistMatcher

	mu             sync.Mutex
	systemReporter int
}

func MigrateUp(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("Error reading migrations: %s", err)
	}
	defer m.Close()
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("While migrating up: %s", err)
	}
	return nil
}
func MigrateDown(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("Error reading migrations: %s", err)
	}
	defer m.Close()
	err = m.Down()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("While migrating down: %s", err)
	}
	return nil
}
func Drop(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("Error reading migrations: %s", err)
	}
	defer m.Close()
	err = m.Drop()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("While dropping: %s", err)
	}
	return nil
}

func Connect(config *models.EnvConfig, logger zerolog.Logger) (*SharedDB, error) {
	pool, err := pgxpool.Connect(context.Background(), config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("Failed to connect to postgres: %w", err)
	}
	bcryptCost := bcrypt.DefaultCost + 2
	if config.Debug {
		bcryptCost = bcrypt.MinCost
	}

	sdb := &SharedDB{
		db:         pool,
		config:     config,
		logger:     logger,
		bcryptCost: bcryptCost,
		content:    newContentRegistry(),
	}
	sdb.matcher = NewWatchlistMatcher(sdb)
	return sdb, nil
}

func (sdb *SharedDB) Close() {
	sdb.db.Close()
}

// Matcher returns the process-wide keyword watchlist matcher.
func (sdb *SharedDB) Matcher() *WatchlistMatcher {
	return sdb.matcher
}

// SystemReporterID resolves the seeded system user that owns
// watchlist-generated flags. The id is looked up once and cached.
func (sdb *SharedDB) SystemReporterID(ctx context.Context) (int, error) {
	sdb.mu.Lock()
	defer sdb.mu.Unlock()
	if sdb.systemReporter != 0 {
		return sdb.systemReporter, nil
	}
	sql, args, _ := psql.
		Select("id").
		From("users").
		Where(sq.Eq{"system": true}).
		Limit(1).
		ToSql()

	var id int
	err := pgxscan.Get(ctx, sdb.db, &id, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("resolving system reporter: %w", err)
	}
	sdb.systemReporter = id
	return id, nil
}

func execTx(ctx context.Context, db DBTX, txFunc func(context.Context, DBTX) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	err = txFunc(ctx, tx)
	if err != nil {
		tx.Rollback(ctx)
		return err
	}

	err = tx.Commit(ctx)
	return err
}

// isUniqueViolation matches postgres error 23505, optionally narrowed
// to one constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}
