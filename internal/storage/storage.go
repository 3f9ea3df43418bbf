// Package storage defines the persistence interface for the catalog.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/vitrina/internal/models"
)

// ErrNotFound is returned when a listing or product id is unknown.
var ErrNotFound = errors.New("not found")

// Storage defines catalog persistence operations.
type Storage interface {
	// Listing operations
	PutListing(ctx context.Context, l *models.Listing) error
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	ListListings(ctx context.Context, offset, limit int) ([]*models.Listing, error)

	// Product operations
	PutProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// ReplaceCatalog atomically swaps the whole catalog for c.
	ReplaceCatalog(ctx context.Context, c *models.Catalog) error

	// Stats
	CountListings(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)

	Close() error
}
