package app

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/artpar/scaffold/adapters/metrics"
	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// SearchService answers reference-picker lookups. It is independent of
// the action pipeline and carries no authorization of its own; callers
// gate access before invoking it.
type SearchService struct {
	store      ports.SearchStore
	maxResults int
	metrics    *metrics.Collector
	logger     zerolog.Logger
}

// SearchDeps contains dependencies for the search service. MaxResults
// caps every query; zero or negative falls back to 50. Metrics is
// optional.
type SearchDeps struct {
	Store      ports.SearchStore
	MaxResults int
	Metrics    *metrics.Collector
	Logger     zerolog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(deps SearchDeps) *SearchService {
	maxResults := deps.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	return &SearchService{
		store:      deps.Store,
		maxResults: maxResults,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Search returns up to limit (id, label) pairs for the given entity type
// and column. A numeric term matches the primary key exactly (at most
// one row); anything else matches the column as a case-insensitive
// substring, in the store's natural order. A missing entity type or
// column yields an empty slice, never an error.
func (s *SearchService) Search(ctx context.Context, entityType, column, term string, limit int) ([]resource.Ref, error) {
	if s.metrics != nil {
		s.metrics.SearchesTotal.Inc()
	}
	if entityType == "" || column == "" {
		return []resource.Ref{}, nil
	}
	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}

	if key, err := strconv.ParseInt(term, 10, 64); err == nil {
		refs, err := s.store.ByKey(ctx, entityType, column, key)
		if err != nil {
			return nil, err
		}
		if len(refs) > 1 {
			refs = refs[:1]
		}
		return refs, nil
	}

	return s.store.ByColumn(ctx, entityType, column, term, limit)
}
