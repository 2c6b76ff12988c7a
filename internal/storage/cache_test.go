package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drakos74/segments/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Get(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte("placeholder"), 0o644))

	table := model.NewTable(path, []model.Customer{{ID: 1}})
	loader := NewMockLoader(table)
	cache := NewCache(loader)

	t1, err := cache.Get(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, table, t1)
	assert.Equal(t, 1, loader.Calls)

	// unchanged file is served from the cache
	t2, err := cache.Get(context.Background(), path)
	assert.NoError(t, err)
	assert.True(t, t1 == t2)
	assert.Equal(t, 1, loader.Calls)

	// a new modification time triggers a reload
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = cache.Get(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 2, loader.Calls)

	cache.Evict(path)
	_, err = cache.Get(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 3, loader.Calls)
}

func TestCache_Errors(t *testing.T) {

	type test struct {
		path func(dir string) string
		err  error
	}

	loadErr := errors.New("broken")

	tests := map[string]test{
		"missing-file": {
			path: func(dir string) string {
				return filepath.Join(dir, "missing.csv")
			},
			err: NotFoundErr,
		},
		"directory": {
			path: func(dir string) string {
				return dir
			},
			err: NotFoundErr,
		},
		"loader-error": {
			path: func(dir string) string {
				p := filepath.Join(dir, "broken.csv")
				_ = os.WriteFile(p, []byte("x"), 0o644)
				return p
			},
			err: loadErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			loader := NewMockLoader(nil)
			loader.Err = loadErr
			cache := NewCache(loader)
			_, err := cache.Get(context.Background(), tt.path(t.TempDir()))
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}
