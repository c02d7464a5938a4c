package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dom/atelier-korea/internal/repository"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

type blobRepository struct {
	db *sql.DB
}

// Open creates (if needed) the database file at path and the blob table.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "atelier.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer keeps sqlite from reporting SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS storage_blobs (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create storage_blobs table: %w", err)
	}
	return db, nil
}

func NewBlobRepository(db *sql.DB) *blobRepository {
	return &blobRepository{db: db}
}

func (r *blobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM storage_blobs WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select blob: %w", err)
	}
	return payload, nil
}

func (r *blobRepository) Save(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO storage_blobs (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert blob: %w", err)
	}
	return nil
}

func NewRepositories(db *sql.DB) *repository.Repositories {
	return &repository.Repositories{
		Blob:  NewBlobRepository(db),
		Close: db.Close,
	}
}
