package storage

import (
	"context"

	"github.com/drakos74/segments/internal/model"
)

// MockLoader returns the same table on every call and counts the calls.
type MockLoader struct {
	Table *model.Table
	Err   error
	Calls int
}

// NewMockLoader creates a new mock loader for the given table.
func NewMockLoader(table *model.Table) *MockLoader {
	return &MockLoader{Table: table}
}

func (m *MockLoader) Load(_ context.Context, path string) (*model.Table, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Table, nil
}
