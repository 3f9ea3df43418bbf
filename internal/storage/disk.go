package storage

import (
	"os"
	"path/filepath"
)

// DiskUsage reports the on-disk footprint of a catalog database and its keyword index.
type DiskUsage struct {
	DatabaseBytes int64
	IndexBytes    int64
}

// Total returns the combined size in bytes.
func (u DiskUsage) Total() int64 { return u.DatabaseBytes + u.IndexBytes }

// MeasureDiskUsage sums the database file with its WAL side files and the index directory.
// In-memory or empty paths, and paths that do not exist yet, count as zero.
func MeasureDiskUsage(dbPath, indexPath string) (DiskUsage, error) {
	var u DiskUsage
	if dbPath != "" && dbPath != MemoryPath {
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			n, err := pathSize(p)
			if err != nil {
				return DiskUsage{}, err
			}
			u.DatabaseBytes += n
		}
	}
	if indexPath != "" {
		n, err := pathSize(indexPath)
		if err != nil {
			return DiskUsage{}, err
		}
		u.IndexBytes = n
	}
	return u, nil
}

func pathSize(p string) (int64, error) {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.Walk(p, func(_ string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi != nil && !fi.IsDir() {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
