// internal/dbroute/loader.go
//
// Bulk route-table loader.
//
// Context
// -------
// The dispatcher needs the full route table at startup and after every
// routing-cache invalidation.  A Loader is a one-shot: Load() discovers the
// descriptors, enumerates every entity of every discovered type, upserts
// the same records the incremental path would, flushes once, and returns
// the Table.  A second Load() on the same Loader fails with
// ErrAlreadyLoaded; callers that need a fresh table build a new Loader.
//
// Workflow
// --------
//  1. Discover once.
//  2. For each entity type (sorted), FindAll from the EntitySource.
//  3. For each entity and descriptor, resolve (locale, slug) pairs, stage
//     the upsert, and add a table entry keyed "<canonical>.<locale>".
//  4. Flush the batch and invalidate the routing cache.
//
// Notes
// -----
// • The whole population of every discovered type is held in memory.
// • A failed Load resets the Loader so the caller may retry it.

package dbroute

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/metrics"
)

const (
	stateUnloaded int32 = iota
	stateLoading
	stateLoaded
)

// Loader rebuilds the whole route table once.
type Loader struct {
	discovery Discoverer
	entities  EntitySource
	store     Store
	cache     Invalidator
	opts      Options
	state     atomic.Int32
}

// NewLoader wires a Loader.  cache may be nil.
func NewLoader(d Discoverer, entities EntitySource, st Store, cache Invalidator, opts Options) *Loader {
	return &Loader{
		discovery: d,
		entities:  entities,
		store:     st,
		cache:     cache,
		opts:      opts.withDefaults(),
	}
}

// Loaded reports whether Load has completed successfully.
func (l *Loader) Loaded() bool { return l.state.Load() == stateLoaded }

// Load rebuilds every route record and returns the route table.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	if !l.state.CompareAndSwap(stateUnloaded, stateLoading) {
		return nil, ErrAlreadyLoaded
	}

	start := time.Now()
	table, err := l.load(ctx)
	if err != nil {
		l.state.Store(stateUnloaded)
		zap.L().Error("route table load failed", zap.Error(err))
		return nil, err
	}
	l.state.Store(stateLoaded)

	metrics.SyncTotal.WithLabelValues("rebuild").Inc()
	metrics.RebuildSeconds.Observe(time.Since(start).Seconds())
	metrics.TableEntries.Set(float64(table.Len()))

	zap.L().Info("route table loaded",
		zap.Int("entries", table.Len()),
		zap.Duration("took", time.Since(start)))
	return table, nil
}

func (l *Loader) load(ctx context.Context) (*Table, error) {
	discovered, err := l.discovery.Discover(ctx)
	if err != nil {
		return nil, err
	}

	table := NewTable()
	b := NewBatch()
	now := l.opts.Now()

	for _, typ := range discovered.Types() {
		if l.entities == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoEntitySource, typ)
		}
		population, err := l.entities.FindAll(ctx, typ)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", typ, err)
		}

		descriptors := discovered.For(typ)
		for _, e := range population {
			for _, d := range descriptors {
				for _, loc := range localizedSlugs(e, l.opts.DefaultLocale) {
					r, err := upsert(ctx, l.store, b, now, typ, e, loc, d)
					if err != nil {
						return nil, err
					}
					table.Add(NewEntry(r.CanonicalRoute, loc.locale, loc.slug, r.Slug, d.Handler))
				}
			}
		}

		zap.L().Debug("route type loaded",
			zap.String("entity_class", typ),
			zap.Int("entities", len(population)))
	}

	if err := flushBatch(ctx, l.store, b); err != nil {
		return nil, err
	}
	if l.cache != nil {
		l.cache.Invalidate(l.opts.CacheTag)
	}
	return table, nil
}
