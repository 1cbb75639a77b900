// Package results holds the most recent result table and derives filtered
// views over it.
package results

import (
	"sync"

	"github.com/anchorscan/anchorscan/models"
)

// Store holds the most recent result table. Each run replaces the table
// wholesale; filters and exports read from here so re-rendering never
// refetches.
type Store struct {
	mu    sync.RWMutex
	table *models.ResultTable
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored table.
func (s *Store) Set(table *models.ResultTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

// Get returns the current table, nil before the first run.
func (s *Store) Get() *models.ResultTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Clear drops the stored table.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
}
