package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "sqlite3"

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for statement and transaction diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.log = l
		}
	}
}

// DB is the process-wide connection manager. Every entity store is built
// on top of one DB.
type DB struct {
	db  *sqlx.DB
	log *zap.Logger
}

// Open creates or opens a SQLite database at the given path.
// ":memory:" opens a private in-memory database, which is what tests use.
//
// The pool is limited to a single connection: jobtrack is single-user and
// SQLite allows one writer, and an in-memory database only lives as long as
// its connection.
func Open(path string, opts ...Option) (*DB, error) {
	raw, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := raw.Ping(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	raw.SetMaxOpenConns(1)
	raw.SetMaxIdleConns(1)

	if err := applyPragmas(raw.DB); err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	d := NewDB(raw, opts...)
	d.log.Debug("database opened", zap.String("path", path))
	return d, nil
}

// NewDB wraps an already opened handle. No pragmas are applied.
func NewDB(db *sqlx.DB, opts ...Option) *DB {
	d := &DB{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SQLX returns the underlying handle for direct queries.
// Prefer the entity stores when they cover the need.
func (d *DB) SQLX() *sqlx.DB {
	return d.db
}

// Exec runs a mutating statement outside any explicit transaction; SQLite
// commits it on its own.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		d.log.Warn("exec failed", zap.Error(err))
		return nil, classify("exec", "", err)
	}
	return res, nil
}

// Fetch runs a query and scans every row into dest, which must be a pointer
// to a slice.
func (d *DB) Fetch(ctx context.Context, dest any, query string, args ...any) error {
	if err := sqlx.SelectContext(ctx, d.db, dest, query, args...); err != nil {
		d.log.Warn("fetch failed", zap.Error(err))
		return classify("fetch", "", err)
	}
	return nil
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.log.Warn("rollback failed", zap.Error(rbErr), zap.NamedError("cause", err))
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		d.log.Debug("transaction rolled back", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		d.log.Warn("commit failed", zap.Error(err))
		return &StorageError{Op: "commit", Err: err}
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (d *DB) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := d.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Stores bundles the four entity stores over one DB.
type Stores struct {
	DB        *DB
	Companies *Companies
	Tags      *Tags
	Jobs      *Jobs
	JobTags   *JobTags
}

// NewStores wires every entity store to db.
func NewStores(db *DB) *Stores {
	companies := NewCompanies(db)
	tags := NewTags(db)
	jobs := NewJobs(db, companies)
	return &Stores{
		DB:        db,
		Companies: companies,
		Tags:      tags,
		Jobs:      jobs,
		JobTags:   NewJobTags(db, jobs, tags),
	}
}

// CreateTables creates every table in dependency order. It is idempotent.
func (s *Stores) CreateTables(ctx context.Context) error {
	steps := []func(context.Context) error{
		s.Companies.CreateTable,
		s.Jobs.CreateTable,
		s.Tags.CreateTable,
		s.JobTags.CreateTable,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DropTables drops every table in reverse dependency order.
func (s *Stores) DropTables(ctx context.Context) error {
	steps := []func(context.Context) error{
		s.JobTags.DropTable,
		s.Tags.DropTable,
		s.Jobs.DropTable,
		s.Companies.DropTable,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// exists reports whether table has a row with the given id.
func exists(ctx context.Context, q sqlx.QueryerContext, table string, id int64) (bool, error) {
	var found bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)", table)
	if err := sqlx.GetContext(ctx, q, &found, query, id); err != nil {
		return false, classify("lookup "+table, "", err)
	}
	return found, nil
}

// affected returns whether res changed at least one row.
func affected(op string, res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: op + ": rows affected", Err: err}
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
