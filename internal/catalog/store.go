// Package catalog holds the in-memory view of sellable variants.
//
// The store keeps the last successful fetch as an immutable snapshot. A
// failed refresh never clears it: the POS keeps selling from stale data
// rather than showing an empty shelf. Display stock is always derived as
// API stock minus whatever the cart already reserves, so the snapshot
// itself is never mutated by cart activity.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/pkg/collection"
	"github.com/licorgest/licorgest/pkg/logger"
	"github.com/licorgest/licorgest/pkg/metrics"
)

// Fetcher is the slice of the API client the store needs.
type Fetcher interface {
	ListVariants(ctx context.Context) ([]api.Variant, error)
}

// Snapshot is one immutable catalog state. Callers must not mutate the
// returned slices or maps.
type Snapshot struct {
	Variants  []api.Variant
	byID      map[int64]api.Variant
	FetchedAt time.Time
}

// Get returns the variant with the given id.
func (s *Snapshot) Get(id int64) (api.Variant, bool) {
	if s == nil {
		return api.Variant{}, false
	}
	v, ok := s.byID[id]
	return v, ok
}

// Stock returns the API stock of a variant, 0 when unknown.
func (s *Snapshot) Stock(id int64) int {
	v, ok := s.Get(id)
	if !ok {
		return 0
	}
	return v.Stock
}

// Categories returns the distinct category names present, sorted.
func (s *Snapshot) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range s.Variants {
		name := v.CategoryName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Filter returns the variants matching a free-text query and/or category.
// Empty arguments match everything.
func (s *Snapshot) Filter(query, category string) []api.Variant {
	query = strings.ToLower(strings.TrimSpace(query))
	return collection.Filter(s.Variants, func(v api.Variant) bool {
		if category != "" && !strings.EqualFold(v.CategoryName(), category) {
			return false
		}
		if query == "" {
			return true
		}
		if strings.Contains(strings.ToLower(v.Name()), query) {
			return true
		}
		if v.Producto != nil && strings.Contains(strings.ToLower(v.Producto.Descripcion), query) {
			return true
		}
		return false
	})
}

// Store serves the current snapshot and refreshes it from the API.
type Store struct {
	fetcher Fetcher

	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore builds a store with an empty snapshot.
func NewStore(fetcher Fetcher) *Store {
	return &Store{
		fetcher: fetcher,
		snap:    buildSnapshot(nil),
	}
}

// Snapshot returns the current immutable snapshot. Never nil.
func (st *Store) Snapshot() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap
}

// Refresh fetches the variant list and swaps in a new snapshot.
// On failure the previous snapshot stays live and the error is returned.
func (st *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	variants, err := st.fetcher.ListVariants(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		logger.Warn("catalog: refresh failed, keeping previous snapshot", "error", err)
		return st.Snapshot(), err
	}

	snap := buildSnapshot(variants)

	st.mu.Lock()
	st.snap = snap
	st.mu.Unlock()

	metrics.CatalogRefreshTotal.WithLabelValues("ok").Inc()
	logger.Debug("catalog: refreshed", "variants", len(variants))
	return snap, nil
}

func buildSnapshot(variants []api.Variant) *Snapshot {
	byID := make(map[int64]api.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}
	return &Snapshot{
		Variants:  variants,
		byID:      byID,
		FetchedAt: time.Now(),
	}
}
