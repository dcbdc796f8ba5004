package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/airsante/airwatch/internal/table"
)

// CSVStore persists datasets as semicolon-separated UTF-8 files in a single
// directory, one file per dataset name.
type CSVStore struct {
	dir string
	sep rune
}

// NewCSVStore creates the directory if needed and returns a store over it.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv store: create dir %q: %w", dir, err)
	}
	return &CSVStore{dir: dir, sep: ';'}, nil
}

func (s *CSVStore) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// Read loads a dataset; a missing file maps to ErrNotFound.
func (s *CSVStore) Read(ctx context.Context, name string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("csv store: open %s: %w", name, err)
	}
	defer f.Close()

	t, err := table.Read(f, s.sep)
	if err != nil {
		return nil, fmt.Errorf("csv store: parse %s: %w", name, err)
	}
	return t, nil
}

// Write persists a dataset atomically: the table is written to a temp file
// in the same directory and renamed over the target, so readers never see a
// partial file.
func (s *CSVStore) Write(ctx context.Context, name string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv store: create temp for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if err := t.Write(tmp, s.sep); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("csv store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("csv store: close temp for %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("csv store: replace %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the dataset file is present.
func (s *CSVStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
