// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/vitrina/internal/models"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStorage implements Storage using SQLite. Payloads are stored as JSON.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != MemoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_listings_position ON listings(position);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putListing(ctx context.Context, db execer, l *models.Listing, position int) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO listings (id, title, position, payload, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, payload = excluded.payload, updated_at = excluded.updated_at`,
		l.ID, l.Title, position, string(payload), time.Now(),
	)
	return err
}

func putProduct(ctx context.Context, db execer, p *models.Product) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO products (id, title, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, payload = excluded.payload, updated_at = excluded.updated_at`,
		p.ID, p.Title, string(payload), time.Now(),
	)
	return err
}

// PutListing inserts or replaces a listing. New listings sort after existing ones.
func (s *SQLiteStorage) PutListing(ctx context.Context, l *models.Listing) error {
	var next int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM listings`).Scan(&next); err != nil {
		return err
	}
	return putListing(ctx, s.db, l, next)
}

// GetListing returns a listing by ID.
func (s *SQLiteStorage) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM listings WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var l models.Listing
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}
	return &l, nil
}

// DeleteListing removes a listing by ID.
func (s *SQLiteStorage) DeleteListing(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	return err
}

// ListListings returns listings in catalog order with offset and limit.
func (s *SQLiteStorage) ListListings(ctx context.Context, offset, limit int) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM listings ORDER BY position, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Listing
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var l models.Listing
		if err := json.Unmarshal([]byte(payload), &l); err != nil {
			return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// PutProduct inserts or replaces a product.
func (s *SQLiteStorage) PutProduct(ctx context.Context, p *models.Product) error {
	return putProduct(ctx, s.db, p)
}

// GetProduct returns a product by ID.
func (s *SQLiteStorage) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM products WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &p, nil
}

// DeleteProduct removes a product by ID.
func (s *SQLiteStorage) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

// ReplaceCatalog deletes every listing and product and inserts c in one transaction.
func (s *SQLiteStorage) ReplaceCatalog(ctx context.Context, c *models.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return err
	}
	for i, l := range c.Listings {
		if err := putListing(ctx, tx, l, i); err != nil {
			return fmt.Errorf("listing %s: %w", l.ID, err)
		}
	}
	for _, p := range c.Products {
		if err := putProduct(ctx, tx, p); err != nil {
			return fmt.Errorf("product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// CountListings returns the total number of listings.
func (s *SQLiteStorage) CountListings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count)
	return count, err
}

// CountProducts returns the total number of products.
func (s *SQLiteStorage) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
