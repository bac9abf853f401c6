// internal/dbroute/sync.go
//
// Incremental synchronizer.
//
// Context
// -------
// Entity repositories call the Synchronizer from their lifecycle hooks:
//
//   - OnEntityChanged: after an insert or update has been committed.
//   - OnEntityRemoving: inside the delete transaction, before commit.
//
// OnEntityChanged resolves the discovery type (a translation row is synced
// through its owner), stages one upsert per descriptor and locale, flushes
// the batch in a single transaction, and invalidates the routing cache once.
//
// OnEntityRemoving stages deletes for every record bound to the entity and
// returns the batch.  It never flushes; the caller owns the commit.
//
// Notes
// -----
// • Discovery runs once per call and is not cached across calls.
// • Oxford commas, two spaces after periods.

package dbroute

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/metrics"
)

// Invalidator is notified after every successful synchronization batch.
type Invalidator interface {
	Invalidate(tag string)
}

// Defaults used when Options leaves a field empty.
const (
	DefaultLocale   = "cs"
	DefaultCacheTag = "routing"
)

// Options tunes a Synchronizer or Loader.
type Options struct {
	// DefaultLocale applies to sluggable entities without a locale.
	DefaultLocale string
	// CacheTag is the namespace passed to Invalidator.Invalidate.
	CacheTag string
	// Now overrides the clock used for Record.Created.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultLocale == "" {
		o.DefaultLocale = DefaultLocale
	}
	if o.CacheTag == "" {
		o.CacheTag = DefaultCacheTag
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Synchronizer keeps route records in step with single entity changes.
type Synchronizer struct {
	discovery Discoverer
	store     Store
	cache     Invalidator
	opts      Options
}

// NewSynchronizer wires a Synchronizer.  cache may be nil.
func NewSynchronizer(d Discoverer, st Store, cache Invalidator, opts Options) *Synchronizer {
	return &Synchronizer{
		discovery: d,
		store:     st,
		cache:     cache,
		opts:      opts.withDefaults(),
	}
}

// OnEntityChanged upserts the routes of e after it was created or updated.
func (s *Synchronizer) OnEntityChanged(ctx context.Context, e Entity, kind ChangeKind) error {
	discovered, err := s.discovery.Discover(ctx)
	if err != nil {
		return err
	}

	target := e
	if tr, ok := e.(TranslationRecord); ok {
		if owner := tr.Owner(); owner != nil {
			target = owner
		}
	}

	typ := target.EntityType()
	descriptors := discovered.For(typ)
	if len(descriptors) == 0 {
		return nil
	}

	metrics.SyncTotal.WithLabelValues("changed").Inc()

	b := NewBatch()
	now := s.opts.Now()
	for _, d := range descriptors {
		for _, l := range localizedSlugs(target, s.opts.DefaultLocale) {
			if _, err := upsert(ctx, s.store, b, now, typ, target, l, d); err != nil {
				return err
			}
		}
	}

	staged := b.Len()
	if err := s.flush(ctx, b); err != nil {
		zap.L().Error("route sync flush failed",
			zap.String("entity_class", typ),
			zap.Int64("entity_id", target.EntityID()),
			zap.Error(err))
		return err
	}
	s.invalidate()

	zap.L().Info("routes synchronized",
		zap.String("entity_class", typ),
		zap.Int64("entity_id", target.EntityID()),
		zap.Stringer("change", kind),
		zap.Int("records", staged))
	return nil
}

// OnEntityRemoving stages deletion of every record bound to e and returns
// the batch for the caller to flush inside its own transaction.  The entity
// type is used as-is; translations are not redirected to their owner.
func (s *Synchronizer) OnEntityRemoving(ctx context.Context, e Entity) (*Batch, error) {
	b := NewBatch()

	discovered, err := s.discovery.Discover(ctx)
	if err != nil {
		return nil, err
	}

	typ := e.EntityType()
	if len(discovered.For(typ)) == 0 {
		return b, nil
	}

	metrics.SyncTotal.WithLabelValues("removing").Inc()

	records, err := s.store.FindByEntity(ctx, typ, e.EntityID())
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		b.Remove(r)
	}
	s.invalidate()

	zap.L().Info("routes staged for removal",
		zap.String("entity_class", typ),
		zap.Int64("entity_id", e.EntityID()),
		zap.Int("records", len(records)))
	return b, nil
}

func (s *Synchronizer) flush(ctx context.Context, b *Batch) error {
	return flushBatch(ctx, s.store, b)
}

func (s *Synchronizer) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate(s.opts.CacheTag)
	}
}

// flushBatch applies b through a transaction when st supports one.
func flushBatch(ctx context.Context, st Store, b *Batch) error {
	if ts, ok := st.(TxStore); ok {
		return ts.InTx(ctx, func(tx Store) error { return b.Flush(ctx, tx) })
	}
	return b.Flush(ctx, st)
}
