package datasource

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/game-predictor/internal/models"
)

const supplementaryCacheKey = "supplementary:all"

// CachedSupplementaryStore caches the full supplementary stats table so daily
// and ad-hoc runs within the TTL share a single lookup.
type CachedSupplementaryStore struct {
	next  SupplementaryStatsStore
	cache *cache.Cache
	ttl   time.Duration

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedSupplementaryStore wraps next with a TTL cache
func NewCachedSupplementaryStore(next SupplementaryStatsStore, ttl time.Duration) *CachedSupplementaryStore {
	return &CachedSupplementaryStore{
		next:  next,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// FetchAll returns the cached table, loading it from the wrapped store on a
// miss. Errors are not cached.
func (s *CachedSupplementaryStore) FetchAll(ctx context.Context) (map[string]models.SupplementaryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, found := s.cache.Get(supplementaryCacheKey); found {
		if stats, ok := cached.(map[string]models.SupplementaryStats); ok {
			s.hitCount++
			return copyStats(stats), nil
		}
	}
	s.missCount++

	stats, err := s.next.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(supplementaryCacheKey, copyStats(stats), s.ttl)
	return stats, nil
}

// Invalidate drops the cached table
func (s *CachedSupplementaryStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Flush()
}

// Stats returns cache statistics
func (s *CachedSupplementaryStore) Stats() (hits, misses uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hitCount, s.missCount
}

func copyStats(in map[string]models.SupplementaryStats) map[string]models.SupplementaryStats {
	out := make(map[string]models.SupplementaryStats, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
