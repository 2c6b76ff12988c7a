package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/drakos74/segments/internal/model"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key identifies a specific version of a data file.
type Key struct {
	Path    string `json:"path"`
	ModTime int64  `json:"mod_time"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.Path, k.ModTime)
}

// Loader reads a customer table from the given path.
type Loader interface {
	Load(ctx context.Context, path string) (*model.Table, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (*model.Table, error)

// Load calls f(ctx, path).
func (f LoaderFunc) Load(ctx context.Context, path string) (*model.Table, error) {
	return f(ctx, path)
}
