// Package store persists day groups as one JSON document per calendar
// date. Each date's group is its own persisted unit; there is no
// whole-database write.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"goaltick/internal/model"
)

// ErrExists is returned by Add when a group of the same name is already
// stored.
var ErrExists = errors.New("store: group already exists")

// FileRepo stores each day group under dir as <name>.json. The lock only
// guards against a concurrent reader on the HTTP side; all writes originate
// from the serialized tick.
type FileRepo struct {
	mu  sync.RWMutex
	dir string
}

// NewFileRepo creates the backing directory if needed.
func NewFileRepo(storageDir string) (*FileRepo, error) {
	if storageDir == "" {
		return nil, errors.New("store: storage dir is empty")
	}
	dir := filepath.Join(storageDir, "groups")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &FileRepo{dir: dir}, nil
}

func (r *FileRepo) pathFor(name string) string {
	return filepath.Join(r.dir, name+".json")
}

// FindByName loads the group for the given date name. A missing file is a
// clean miss, not an error.
func (r *FileRepo) FindByName(_ context.Context, name string) (*model.DayGroup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.pathFor(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var g model.DayGroup
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, false, fmt.Errorf("store: decode group %s: %w", name, err)
	}
	return &g, true, nil
}

// Add persists a new group, failing with ErrExists when the date already
// has one.
func (r *FileRepo) Add(_ context.Context, g *model.DayGroup) error {
	if g == nil || g.Name == "" {
		return errors.New("store: group is nil or unnamed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.pathFor(g.Name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, g.Name)
	}
	return r.write(path, g)
}

// AddOrUpdate upserts the group.
func (r *FileRepo) AddOrUpdate(_ context.Context, g *model.DayGroup) error {
	if g == nil || g.Name == "" {
		return errors.New("store: group is nil or unnamed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(r.pathFor(g.Name), g)
}

// List returns the stored group names, sorted ascending (date order, since
// names are yyyy-mm-dd).
func (r *FileRepo) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// write marshals and writes atomically via temp file + rename, matching the
// config save discipline.
func (r *FileRepo) write(path string, g *model.DayGroup) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".goaltick-group-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
