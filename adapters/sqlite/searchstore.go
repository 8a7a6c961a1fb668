package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// SearchStore is a SQLite implementation of ports.SearchStore. Table and
// column names come from request input, so both are validated against
// the schema before being interpolated; unknown names yield empty
// results rather than errors.
type SearchStore struct {
	db *DB
}

// NewSearchStore creates a SQLite search store.
func NewSearchStore(db *DB) *SearchStore {
	return &SearchStore{db: db}
}

// ByKey returns at most one (id, label) pair whose id equals key.
func (s *SearchStore) ByKey(ctx context.Context, entityType, column string, key int64) ([]resource.Ref, error) {
	ok, err := s.hasColumn(ctx, entityType, column)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []resource.Ref{}, nil
	}

	query := fmt.Sprintf(
		`SELECT id, %s FROM %s WHERE id = ? LIMIT 1`,
		quoteIdent(column), quoteIdent(entityType),
	)
	return s.collect(ctx, query, key)
}

// ByColumn returns up to limit (id, label) pairs whose column contains
// term as a case-insensitive substring, in rowid order.
func (s *SearchStore) ByColumn(ctx context.Context, entityType, column, term string, limit int) ([]resource.Ref, error) {
	ok, err := s.hasColumn(ctx, entityType, column)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []resource.Ref{}, nil
	}

	query := fmt.Sprintf(
		`SELECT id, %[1]s FROM %[2]s WHERE %[1]s LIKE ? ESCAPE '\' ORDER BY rowid LIMIT ?`,
		quoteIdent(column), quoteIdent(entityType),
	)
	return s.collect(ctx, query, likePattern(term), limit)
}

func (s *SearchStore) collect(ctx context.Context, query string, args ...any) ([]resource.Ref, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	refs := []resource.Ref{}
	for rows.Next() {
		var ref resource.Ref
		if err := rows.Scan(&ref.ID, &ref.Label); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// hasColumn reports whether the table exists and has both an id column
// and the requested column.
func (s *SearchStore) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	hasID, hasCol := false, false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan column name: %w", err)
		}
		if name == "id" {
			hasID = true
		}
		if name == column {
			hasCol = true
		}
	}
	return hasID && hasCol, rows.Err()
}

// quoteIdent wraps an already-validated identifier in double quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// likePattern escapes LIKE metacharacters and wraps the term in
// wildcards.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// Ensure interface compliance.
var _ ports.SearchStore = (*SearchStore)(nil)
