package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"slotcast/internal/models"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute

	slotsCollection  = "slots"
	scenesCollection = "scenes"
	imagesCollection = "images"
)

// SQLiteStore keeps each collection as one JSON document row. Whole-document
// replacement maps onto a single upsert, which SQLite applies atomically.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database and bootstraps the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ReadSlots(ctx context.Context) (map[string]models.Slot, error) {
	slots := map[string]models.Slot{}
	if err := s.readDocument(ctx, slotsCollection, &slots); err != nil {
		return nil, err
	}
	if slots == nil {
		slots = map[string]models.Slot{}
	}
	return slots, nil
}

func (s *SQLiteStore) WriteSlots(ctx context.Context, slots map[string]models.Slot) error {
	if slots == nil {
		slots = map[string]models.Slot{}
	}
	return s.writeDocument(ctx, slotsCollection, slots)
}

func (s *SQLiteStore) ReadScenes(ctx context.Context) ([]models.Scene, error) {
	scenes := []models.Scene{}
	if err := s.readDocument(ctx, scenesCollection, &scenes); err != nil {
		return nil, err
	}
	if scenes == nil {
		scenes = []models.Scene{}
	}
	return scenes, nil
}

func (s *SQLiteStore) WriteScenes(ctx context.Context, scenes []models.Scene) error {
	if scenes == nil {
		scenes = []models.Scene{}
	}
	return s.writeDocument(ctx, scenesCollection, scenes)
}

func (s *SQLiteStore) ReadImages(ctx context.Context) ([]models.Image, error) {
	images := []models.Image{}
	if err := s.readDocument(ctx, imagesCollection, &images); err != nil {
		return nil, err
	}
	if images == nil {
		images = []models.Image{}
	}
	return images, nil
}

func (s *SQLiteStore) WriteImages(ctx context.Context, images []models.Image) error {
	if images == nil {
		images = []models.Image{}
	}
	return s.writeDocument(ctx, imagesCollection, images)
}

func (s *SQLiteStore) readDocument(ctx context.Context, collection string, dst any) error {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE collection = ?", collection).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", collection, err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("parse %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) writeDocument(ctx context.Context, collection string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, body, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(collection) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, collection, string(body))
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Tune connection pool for local usage.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
