package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/vitrina/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_Listings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	l := &models.Listing{
		ID:           "MLA1",
		Title:        "Apple iPhone 13",
		Price:        1367999,
		Condition:    "new",
		Installments: &models.Installments{Quantity: 12, Amount: 113999.92},
		Shipping:     &models.Shipping{FreeShipping: true},
	}
	if err := store.PutListing(ctx, l); err != nil {
		t.Fatal(err)
	}
	if err := store.PutListing(ctx, &models.Listing{ID: "MLA2", Title: "iPhone 8"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetListing(ctx, "MLA1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Apple iPhone 13" || got.Installments == nil || got.Installments.Amount != 113999.92 {
		t.Errorf("got %+v", got)
	}

	l.Title = "Apple iPhone 13 (128 GB)"
	if err := store.PutListing(ctx, l); err != nil {
		t.Fatal(err)
	}
	list, err := store.ListListings(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "MLA1" || list[0].Title != "Apple iPhone 13 (128 GB)" {
		t.Errorf("unexpected list order or content: %+v", list)
	}

	n, err := store.CountListings(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountListings = %d, %v; want 2", n, err)
	}

	if err := store.DeleteListing(ctx, "MLA1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetListing(ctx, "MLA1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStorage_Products(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &models.Product{
		ID:            "MLA998877665",
		Title:         "Apple iPhone 16 Pro",
		Price:         2509380.59,
		OriginalPrice: 3023244.99,
		Attributes:    []models.Attribute{{ID: "BRAND", Name: "Marca", ValueName: "Apple"}},
	}
	if err := store.PutProduct(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.OriginalPrice != 3023244.99 || len(got.Attributes) != 1 {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetProduct(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountProducts(ctx); n != 0 {
		t.Errorf("CountProducts = %d after delete", n)
	}
}

func TestSQLiteStorage_ReplaceCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.PutListing(ctx, &models.Listing{ID: "OLD", Title: "stale"})
	c := &models.Catalog{
		Listings: []*models.Listing{{ID: "B", Title: "second"}, {ID: "A", Title: "first"}},
		Products: []*models.Product{{ID: "P", Title: "product"}},
	}
	if err := store.ReplaceCatalog(ctx, c); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetListing(ctx, "OLD"); !errors.Is(err, ErrNotFound) {
		t.Error("old listing should be gone")
	}
	list, err := store.ListListings(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "B" || list[1].ID != "A" {
		t.Errorf("catalog order not preserved: %+v", list)
	}
	if n, _ := store.CountProducts(ctx); n != 1 {
		t.Errorf("CountProducts = %d, want 1", n)
	}
}

func TestSQLiteStorage_Memory(t *testing.T) {
	store, err := NewSQLiteStorage(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.PutProduct(ctx, &models.Product{ID: "X", Title: "x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetProduct(ctx, "X"); err != nil {
		t.Errorf("in-memory store lost data: %v", err)
	}
}
