// Package snapshot persists shaped catalog responses in SQLite so the
// relay can serve a stale-but-complete catalog when GitHub is unreachable
// and the warm memo is cold. Snapshots are recorded on every successful
// catalog fetch and pruned to a per-user retention bound.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Record is one persisted catalog snapshot.
type Record struct {
	// User is the GitHub login the snapshot belongs to.
	User string

	// Body is the serialized catalog response exactly as it was sent.
	Body []byte

	// ETag is the entity tag computed over Body.
	ETag string

	// FetchedAt is when the snapshot's data was fetched upstream.
	FetchedAt time.Time
}

// StoreConfig configures the snapshot store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string

	// Keep bounds the number of retained snapshots per user.
	// Default: 10
	Keep int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Store persists catalog snapshots in SQLite.
//
// The store uses a write-ahead log for concurrent read performance and a
// single writer connection, which is all SQLite supports anyway.
type Store struct {
	db   *sql.DB
	keep int

	mu        sync.RWMutex
	closeOnce sync.Once

	saveStmt   *sql.Stmt
	latestStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// NewStore opens (or creates) the snapshot database at cfg.Path.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("snapshot path cannot be empty")
	}
	if cfg.Keep == 0 {
		cfg.Keep = 10
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, keep: cfg.Keep}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare snapshot statements: %w", err)
	}

	return s, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user TEXT NOT NULL,
		body BLOB NOT NULL,
		etag TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_user_fetched
		ON catalog_snapshots(user, fetched_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *Store) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO catalog_snapshots (user, body, etag, fetched_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.latestStmt, err = s.db.Prepare(`
		SELECT body, etag, fetched_at
		FROM catalog_snapshots
		WHERE user = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare latest statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM catalog_snapshots
		WHERE user = ? AND id NOT IN (
			SELECT id FROM catalog_snapshots
			WHERE user = ?
			ORDER BY fetched_at DESC, id DESC
			LIMIT ?
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Save records a snapshot and prunes the user's history to the retention
// bound.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.User == "" {
		return fmt.Errorf("snapshot user cannot be empty")
	}
	if len(rec.Body) == 0 {
		return fmt.Errorf("snapshot body cannot be empty")
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.saveStmt.ExecContext(ctx, rec.User, rec.Body, rec.ETag, rec.FetchedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if _, err := s.pruneStmt.ExecContext(ctx, rec.User, rec.User, s.keep); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for user, or (nil, nil) when
// none exists.
func (s *Store) Latest(ctx context.Context, user string) (*Record, error) {
	if user == "" {
		return nil, fmt.Errorf("snapshot user cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		body      []byte
		etag      string
		fetchedAt int64
	)
	err := s.latestStmt.QueryRowContext(ctx, user).Scan(&body, &etag, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return &Record{
		User:      user,
		Body:      body,
		ETag:      etag,
		FetchedAt: time.UnixMilli(fetchedAt),
	}, nil
}

// Close releases the database handle. Close is idempotent.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.latestStmt != nil {
			s.latestStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}
