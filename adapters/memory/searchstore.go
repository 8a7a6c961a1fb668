package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// SearchRow is one searchable row: an id plus named column values.
type SearchRow struct {
	ID      string
	Columns map[string]string
}

// SearchStore is an in-memory implementation of ports.SearchStore.
// Rows keep insertion order, which is the natural order of results.
type SearchStore struct {
	mu     sync.RWMutex
	tables map[string][]SearchRow
}

// NewSearchStore creates an empty in-memory search store.
func NewSearchStore() *SearchStore {
	return &SearchStore{tables: make(map[string][]SearchRow)}
}

// Add appends a row to a table.
func (s *SearchStore) Add(table string, row SearchRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], row)
}

// ByKey returns at most one (id, label) pair whose id equals key.
// Unknown tables and columns yield empty results.
func (s *SearchStore) ByKey(ctx context.Context, entityType, column string, key int64) ([]resource.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strconv.FormatInt(key, 10)
	for _, row := range s.tables[entityType] {
		if row.ID != want {
			continue
		}
		label, ok := row.Columns[column]
		if !ok {
			return []resource.Ref{}, nil
		}
		return []resource.Ref{{ID: row.ID, Label: label}}, nil
	}
	return []resource.Ref{}, nil
}

// ByColumn returns up to limit pairs whose column contains term as a
// case-insensitive substring, in insertion order.
func (s *SearchStore) ByColumn(ctx context.Context, entityType, column, term string, limit int) ([]resource.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	refs := []resource.Ref{}
	for _, row := range s.tables[entityType] {
		value, ok := row.Columns[column]
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(value), needle) {
			continue
		}
		refs = append(refs, resource.Ref{ID: row.ID, Label: value})
		if limit > 0 && len(refs) >= limit {
			break
		}
	}
	return refs, nil
}

// Ensure interface compliance.
var _ ports.SearchStore = (*SearchStore)(nil)
