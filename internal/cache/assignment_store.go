package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dpup/territory-planner/server/internal/lib/territory"
)

const assignmentKeyPrefix = "assignment:"

// AssignmentStore caches assignment results by request content hash. Assignment
// is deterministic, so a hit can be served in place of recomputing.
type AssignmentStore interface {
	Get(ctx context.Context, requestHash string) (*territory.Result, bool, error)
	Put(ctx context.Context, requestHash string, result *territory.Result) error
	Forget(ctx context.Context, requestHash string)
	Len() int
}

// assignmentStore implements AssignmentStore on top of Cache
type assignmentStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewAssignmentStore creates an assignment store backed by the cache
func NewAssignmentStore(cache *Cache, ttl time.Duration) AssignmentStore {
	return &assignmentStore{cache: cache, ttl: ttl}
}

// Get returns the cached result for a request hash
func (s *assignmentStore) Get(ctx context.Context, requestHash string) (*territory.Result, bool, error) {
	var result territory.Result
	found, err := s.cache.Get(assignmentKeyPrefix+requestHash, &result)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached assignment: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &result, true, nil
}

// Put stores a result under its request hash
func (s *assignmentStore) Put(ctx context.Context, requestHash string, result *territory.Result) error {
	return s.cache.Set(assignmentKeyPrefix+requestHash, result, s.ttl, "assignment")
}

// Forget drops a cached result
func (s *assignmentStore) Forget(ctx context.Context, requestHash string) {
	s.cache.Delete(assignmentKeyPrefix + requestHash)
}

// Len counts cached assignments, stale or not
func (s *assignmentStore) Len() int {
	var n int
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, assignmentKeyPrefix) {
			n++
		}
	}
	return n
}
