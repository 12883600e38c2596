package records

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
)

// FileStore keeps records in memory and mirrors them to a JSON file
type FileStore struct {
	path  string
	mu    sync.RWMutex
	sizes map[string][]Record
}

// NewFileStore loads records from path. An empty path keeps records in memory only.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:  path,
		sizes: make(map[string][]Record),
	}
	if path == "" {
		return fs, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	if len(data) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(data, &fs.sizes); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}
	for key := range fs.sizes {
		Rank(fs.sizes[key])
	}
	return fs, nil
}

// Submit stores the record and reports whether it became the best for its size
func (fs *FileStore) Submit(ctx context.Context, rec Record) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := rec.SizeKey()
	prev, had := fs.sizes[key]
	best := len(prev) == 0 || Better(rec, prev[0])

	list := append(slices.Clone(prev), rec)
	Rank(list)
	if len(list) > DefaultTopN {
		list = list[:DefaultTopN]
	}
	fs.sizes[key] = list

	// Memory never holds a record the file lacks
	if err := fs.flush(); err != nil {
		if had {
			fs.sizes[key] = prev
		} else {
			delete(fs.sizes, key)
		}
		return false, err
	}
	return best, nil
}

// Best returns the best record for a size
func (fs *FileStore) Best(ctx context.Context, cols, rows int) (*Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	list := fs.sizes[SizeKey(cols, rows)]
	if len(list) == 0 {
		return nil, ErrNoRecord
	}
	rec := list[0]
	return &rec, nil
}

// Top returns up to limit records for a size, best first
func (fs *FileStore) Top(ctx context.Context, cols, rows, limit int) ([]Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	list := fs.sizes[SizeKey(cols, rows)]
	limit = clampLimit(limit)
	if len(list) < limit {
		limit = len(list)
	}
	out := make([]Record, limit)
	copy(out, list[:limit])
	return out, nil
}

// AllBest returns the best record of every size, ordered by grid area
func (fs *FileStore) AllBest(ctx context.Context) ([]Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]Record, 0, len(fs.sizes))
	for _, list := range fs.sizes {
		if len(list) > 0 {
			out = append(out, list[0])
		}
	}
	sortBySize(out)
	return out, nil
}

// Close is a no-op; every submission is flushed immediately
func (fs *FileStore) Close() error {
	return nil
}

// flush writes the records atomically. Callers hold the write lock.
func (fs *FileStore) flush() error {
	if fs.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(fs.sizes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace records file: %w", err)
	}
	return nil
}

func sortBySize(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		ai, aj := recs[i].Cols*recs[i].Rows, recs[j].Cols*recs[j].Rows
		if ai != aj {
			return ai < aj
		}
		return recs[i].Cols < recs[j].Cols
	})
}
