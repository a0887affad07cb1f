package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-console/internal/models"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
)

const lookupKeyPrefix = "lookup:"

// ReferenceFetcher loads the reference list of one resource from the backend.
type ReferenceFetcher func(ctx context.Context) ([]models.Reference, error)

// LookupService resolves foreign keys by name. Reference lists are cached
// until the resource they come from is mutated.
type LookupService struct {
	fetchers map[string]ReferenceFetcher
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewLookupService constructs a lookup service. cache may be nil.
func NewLookupService(cache *CacheService, ttl time.Duration, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{fetchers: map[string]ReferenceFetcher{}, cache: cache, ttl: ttl, logger: logger}
}

// Register makes resource available for lookups.
func (s *LookupService) Register(resource string, fetch ReferenceFetcher) {
	s.fetchers[resource] = fetch
}

// Resources lists the registered reference resources.
func (s *LookupService) Resources() []string {
	names := make([]string, 0, len(s.fetchers))
	for name := range s.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// References returns the reference list of resource.
func (s *LookupService) References(ctx context.Context, resource string) ([]models.Reference, error) {
	fetch, ok := s.fetchers[resource]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no reference list for %s", resource))
	}

	key := lookupKeyPrefix + resource
	var cached []models.Reference
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	refs, err := fetch(ctx)
	if err != nil {
		s.logger.Warn("reference list fetch failed", zap.String("resource", resource), zap.Error(err))
		return nil, err
	}
	if refs == nil {
		refs = []models.Reference{}
	}
	s.cache.Set(ctx, key, refs, s.ttl)
	return refs, nil
}

// ReferencesOrEmpty is References for display paths, where a failed lookup
// only degrades names to "N/A".
func (s *LookupService) ReferencesOrEmpty(ctx context.Context, resource string) []models.Reference {
	refs, err := s.References(ctx, resource)
	if err != nil {
		return nil
	}
	return refs
}

// Invalidate drops the cached reference list of resource.
func (s *LookupService) Invalidate(ctx context.Context, resource string) error {
	if _, ok := s.fetchers[resource]; !ok {
		return nil
	}
	return s.cache.Invalidate(ctx, lookupKeyPrefix+resource+"*")
}
