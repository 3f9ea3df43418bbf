package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hyperjump/vitrina/internal/models"
)

// WriteCatalog writes c as a fixtures file at path. The file is replaced atomically
// (temp file and rename) the way editors and deploy tools usually do it.
func WriteCatalog(path string, c *models.Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
