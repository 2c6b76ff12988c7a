package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/drakos74/segments/internal/model"
	"github.com/rs/zerolog/log"
)

// Cache keeps the last loaded table for each path.
// An entry is reused only as long as the file modification time has not changed.
type Cache struct {
	loader Loader
	tables map[string]entry
	mutex  *sync.RWMutex
}

type entry struct {
	key   Key
	table *model.Table
}

// NewCache creates a new cache on top of the given loader.
func NewCache(loader Loader) *Cache {
	return &Cache{
		loader: loader,
		tables: make(map[string]entry),
		mutex:  new(sync.RWMutex),
	}
}

// Get returns the table for the given path, loading it if the file is new or has changed.
func (c *Cache) Get(ctx context.Context, path string) (*model.Table, error) {
	key, err := keyFor(path)
	if err != nil {
		return nil, err
	}

	c.mutex.RLock()
	e, ok := c.tables[key.Path]
	c.mutex.RUnlock()
	if ok && e.key == key {
		return e.table, nil
	}

	table, err := c.loader.Load(ctx, key.Path)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("key", key.String()).
		Int("rows", table.Len()).
		Bool("reload", ok).
		Msg("loaded customer table")

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tables[key.Path] = entry{
		key:   key,
		table: table,
	}
	return table, nil
}

// Evict removes the entry for the given path.
func (c *Cache) Evict(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.tables, filepath.Clean(path))
}

func keyFor(path string) (Key, error) {
	p := filepath.Clean(path)
	info, err := os.Stat(p)
	if err != nil {
		return Key{}, fmt.Errorf("could not stat file '%s' %s: %w", p, err.Error(), NotFoundErr)
	}
	if info.IsDir() {
		return Key{}, fmt.Errorf("path is a directory '%s': %w", p, NotFoundErr)
	}
	return Key{
		Path:    p,
		ModTime: info.ModTime().UnixNano(),
	}, nil
}
