package expect

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sells-group/macro-eval/internal/model"
	"github.com/sells-group/macro-eval/internal/transform"
)

// SeriesLookup resolves a series by id from an in-memory snapshot.
type SeriesLookup func(seriesID string) (*model.Series, bool)

// TruthCache computes truth values lazily and memoizes them by spec
// identity. Computation happens at most once per unique spec even under
// concurrent callers; recomputation of the same spec is idempotent and
// bit-identical because the underlying transform is pure.
type TruthCache struct {
	lookup SeriesLookup

	mu     sync.RWMutex
	values map[string]*model.TruthValue
	group  singleflight.Group
}

// NewTruthCache creates a cache over the given series lookup.
func NewTruthCache(lookup SeriesLookup) *TruthCache {
	return &TruthCache{
		lookup: lookup,
		values: make(map[string]*model.TruthValue),
	}
}

// Get returns the truth value for spec, computing it on first need.
func (c *TruthCache) Get(spec model.TruthSpec) (*model.TruthValue, error) {
	key := spec.Key()

	c.mu.RLock()
	cached, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		series, ok := c.lookup(spec.SeriesID)
		if !ok {
			return nil, model.ErrSeriesNotFound(spec.SeriesID)
		}
		tv, err := transform.Compute(series, spec)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.values[key] = tv
		c.mu.Unlock()
		return tv, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.TruthValue), nil
}

// Len reports the number of cached truth values.
func (c *TruthCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
