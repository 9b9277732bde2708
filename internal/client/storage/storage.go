// Package storage keeps trip records in an embedded SQLite table on the device.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/atinyakov/TripSync/internal/models"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// LocalStore is the device-resident Place table.
// The zero value is not usable; create it with NewLocalStore.
type LocalStore struct {
	path string
	log  *zap.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewLocalStore returns a store backed by the SQLite file at path.
// Nothing is opened until Open is called.
func NewLocalStore(path string, log *zap.Logger) *LocalStore {
	if path == "" {
		path = DefaultFile
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalStore{path: path, log: log}
}

// Open opens the store file, creating it if absent, and brings the schema
// up to date. Calling Open on an already open store does nothing.
func (s *LocalStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	// One connection: SQLite has a single writer and the handle is shared process-wide.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping local store: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate local store: %w", err)
	}

	s.db = db
	s.log.Debug("local store opened", zap.String("path", s.path))
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

// Close releases the store handle. It is safe to call more than once.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *LocalStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// QueryByUser returns every record owned by userID in insertion order.
// The result is empty, not nil, when the user has no records.
func (s *LocalStore) QueryByUser(ctx context.Context, userID string) ([]models.TripRecord, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT _id, placeName, experience, travelWith, travelBy, userId
		FROM Place WHERE userId = ? ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("QueryByUser: %w", err)
	}
	defer rows.Close()

	places := make([]models.TripRecord, 0)
	for rows.Next() {
		var (
			p     models.TripRecord
			owner sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.PlaceName, &p.Experience, &p.TravelWith, &p.TravelBy, &owner); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.UserID = owner.String
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("QueryByUser: rows: %w", err)
	}
	return places, nil
}

// Insert writes a new record inside a write transaction.
// A record whose id is already stored yields ErrDuplicateID.
func (s *LocalStore) Insert(ctx context.Context, p models.TripRecord) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO Place (_id, placeName, experience, travelWith, travelBy, userId)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.PlaceName, p.Experience, p.TravelWith, p.TravelBy, sql.NullString{String: p.UserID, Valid: p.UserID != ""})
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return fmt.Errorf("insert place %d: %w", p.ID, ErrDuplicateID)
		}
		return fmt.Errorf("insert place %d: %w", p.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteByID removes the record with the given id inside a write transaction.
// An unknown id is not an error.
func (s *LocalStore) DeleteByID(ctx context.Context, id int64) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var found int64
	err = tx.QueryRowContext(ctx, `SELECT _id FROM Place WHERE _id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Debug("delete of unknown place ignored", zap.Int64("id", id))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup place %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM Place WHERE _id = ?`, found); err != nil {
		return fmt.Errorf("delete place %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isPrimaryKeyViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}
