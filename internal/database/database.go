package database

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net/url"
    "time"

    "github.com/jmoiron/sqlx"
    _ "github.com/lib/pq"  // PostgreSQL driver
    _ "modernc.org/sqlite" // pure-Go SQLite driver

    appconfig "github.com/GTDGit/catalog_api/internal/config"
)

// Connect opens the catalog store described by cfg. It applies a small retry
// strategy to handle transient bootstrapping issues (e.g., DB container
// starting up). The returned *sqlx.DB has pool settings pre-configured and is
// pinged before returning.
func Connect(cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
    if cfg == nil {
        return nil, errors.New("nil database config")
    }

    driver, dsn, err := dataSource(cfg)
    if err != nil {
        return nil, err
    }

    // Retry policy: up to 5 attempts, exponential backoff starting at 500ms.
    const (
        maxAttempts = 5
        baseDelay   = 500 * time.Millisecond
    )

    var db *sqlx.DB
    var lastErr error
    for attempt := 1; attempt <= maxAttempts; attempt++ {
        db, lastErr = sqlx.Open(driver, dsn)
        if lastErr != nil {
            sleepWithBackoff(attempt, baseDelay)
            continue
        }

        setPool(db)

        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        lastErr = db.PingContext(ctx)
        cancel()
        if lastErr == nil {
            return db, nil
        }

        _ = db.Close()
        sleepWithBackoff(attempt, baseDelay)
    }

    return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxAttempts, lastErr)
}

// OpenSQLite opens (creating if needed) a SQLite catalog file without retries.
// Foreign keys are enforced and writers wait on a busy database instead of
// failing immediately.
func OpenSQLite(path string) (*sqlx.DB, error) {
    db, err := sqlx.Open(appconfig.DriverSQLite, sqliteDSN(path))
    if err != nil {
        return nil, err
    }
    setPool(db)
    if err := db.Ping(); err != nil {
        _ = db.Close()
        return nil, err
    }
    return db, nil
}

func dataSource(cfg *appconfig.DatabaseConfig) (string, string, error) {
    switch cfg.Driver {
    case appconfig.DriverPostgres, "":
        dsn := fmt.Sprintf(
            "postgres://%s:%s@%s:%s/%s?sslmode=%s",
            url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
        )
        return appconfig.DriverPostgres, dsn, nil
    case appconfig.DriverSQLite:
        return appconfig.DriverSQLite, sqliteDSN(cfg.Path), nil
    default:
        return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
    }
}

func sqliteDSN(path string) string {
    return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// setPool configures the connection pool for the database. SQLite allows a
// single writer, so its pool is pinned to one connection.
func setPool(db *sqlx.DB) {
    if db.DriverName() == appconfig.DriverSQLite {
        db.SetMaxOpenConns(1)
        return
    }
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(5)
    db.SetConnMaxLifetime(5 * time.Minute)
}

// IsPostgres reports whether db talks to PostgreSQL.
func IsPostgres(db *sqlx.DB) bool {
    return db.DriverName() == appconfig.DriverPostgres
}

// sleepWithBackoff sleeps for an exponentially increasing duration.
func sleepWithBackoff(attempt int, base time.Duration) {
    // Simple exponential backoff: base * 2^(attempt-1), capped to 5s.
    d := base << (attempt - 1)
    if d > 5*time.Second {
        d = 5 * time.Second
    }
    time.Sleep(d)
}

// WithTx runs fn inside a transaction and commits when fn returns nil. Any
// error (including a panic unwinding through fn) rolls the transaction back.
func WithTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
    tx, err := db.BeginTxx(ctx, opts)
    if err != nil {
        return fmt.Errorf("start transaction: %w", err)
    }
    defer func() {
        _ = tx.Rollback()
    }()

    if err := fn(tx); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit transaction: %w", err)
    }
    return nil
}

// SnapshotOptions returns the transaction options used for consistent
// multi-row reads: a read-only REPEATABLE READ snapshot on PostgreSQL, the
// driver default on SQLite (whose transactions are already serializable).
func SnapshotOptions(db *sqlx.DB) *sql.TxOptions {
    if IsPostgres(db) {
        return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
    }
    return nil
}
