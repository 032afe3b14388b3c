package service

import (
	"context"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/rs/zerolog"
)

type PersonSearcher interface {
	Search(ctx context.Context, term string) ([]model.PersonRecord, error)
}

// SearchCache is satisfied by cache.SearchCache.
type SearchCache interface {
	Key(ctx context.Context, term string) (string, error)
	Get(ctx context.Context, key string) ([]model.PersonRecord, bool, error)
	Set(ctx context.Context, key string, results []model.PersonRecord) error
}

// DirectoryService answers people searches.
type DirectoryService struct {
	people PersonSearcher
	cache  SearchCache
	logger *zerolog.Logger
}

// NewDirectoryService builds the search service. cache may be nil.
func NewDirectoryService(people PersonSearcher, cache SearchCache, logger *zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		people: people,
		cache:  cache,
		logger: logger,
	}
}

// Search returns people whose name contains term, ignoring case.
// The cache is best effort: its failures are logged and the database answers.
// The key is resolved before the query so a load finishing mid-search cannot
// file old rows under the generation it just started.
func (s *DirectoryService) Search(ctx context.Context, term string) ([]model.PersonRecord, error) {
	key := s.cacheKey(ctx, term)
	if key != "" {
		results, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("search cache read failed")
		case ok:
			return results, nil
		}
	}

	results, err := s.people.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, results); err != nil {
			s.logger.Warn().Err(err).Msg("search cache write failed")
		}
	}

	return results, nil
}

// cacheKey returns "" when there is no cache or it cannot be reached.
func (s *DirectoryService) cacheKey(ctx context.Context, term string) string {
	if s.cache == nil {
		return ""
	}
	key, err := s.cache.Key(ctx, term)
	if err != nil {
		s.logger.Warn().Err(err).Msg("search cache key lookup failed")
		return ""
	}
	return key
}
