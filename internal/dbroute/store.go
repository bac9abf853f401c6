// internal/dbroute/store.go
//
// Record store contract and the staged-changes batch.
//
// Context
// -------
// The Synchronizer and Loader never write rows directly.  Every upsert or
// delete is staged in a *Batch, and the batch is applied to a Store in one
// Flush call.  This is what lets entity removal hand its deletes back to the
// caller, who flushes them inside the same transaction that deletes the
// entity.
//
// Workflow
// --------
//  1. upsert() looks the natural key up in the batch, then in the store.
//  2. Misses are staged as inserts; hits are tracked with a snapshot.
//  3. Flush applies deletes, inserts, and changed tracked records.  An
//     insert that collides with the natural-key index is retried once as an
//     update of the row that won the race.
//
// Notes
// -----
// • A Batch is not safe for concurrent use.
// • Tracked records whose mutable columns did not change are not written.

package dbroute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/metrics"
)

// Store is the persistence contract for route records.  FindOne returns
// nil, nil when no record matches.  Insert returns an error wrapping
// ErrDuplicate when the natural key already exists.
type Store interface {
	FindOne(ctx context.Context, k Key) (*Record, error)
	FindByEntity(ctx context.Context, entityClass string, entityID int64) ([]*Record, error)
	Insert(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id int64) error
}

// TxStore is a Store that can run a function inside one transaction.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}

// Batch collects staged record changes until Flush.
type Batch struct {
	inserts []*Record
	tracked []*Record
	orig    map[*Record]mutable
	index   map[Key]*Record
	deletes []*Record
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{
		orig:  map[*Record]mutable{},
		index: map[Key]*Record{},
	}
}

// Len reports the number of staged inserts, tracked records, and deletes.
func (b *Batch) Len() int { return len(b.inserts) + len(b.tracked) + len(b.deletes) }

// Deletes returns the records staged for deletion.
func (b *Batch) Deletes() []*Record { return append([]*Record(nil), b.deletes...) }

func (b *Batch) lookup(k Key) (*Record, bool) {
	r, ok := b.index[k]
	return r, ok
}

func (b *Batch) insert(r *Record) {
	b.inserts = append(b.inserts, r)
	b.index[r.Key()] = r
}

func (b *Batch) track(r *Record) {
	b.tracked = append(b.tracked, r)
	b.orig[r] = r.mutable()
	b.index[r.Key()] = r
}

// Remove stages r for deletion.
func (b *Batch) Remove(r *Record) {
	b.deletes = append(b.deletes, r)
}

// Flush applies every staged change to st and resets the batch.  The first
// error aborts the flush; callers running inside a transaction roll back.
func (b *Batch) Flush(ctx context.Context, st Store) error {
	for _, r := range b.deletes {
		if err := st.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("delete route %d: %w", r.ID, err)
		}
		metrics.RecordsStagedTotal.WithLabelValues("delete").Inc()
	}

	for _, r := range b.inserts {
		if err := insertOrAdopt(ctx, st, r); err != nil {
			return err
		}
	}

	for _, r := range b.tracked {
		if b.orig[r] == r.mutable() {
			continue
		}
		if err := st.Update(ctx, r); err != nil {
			return fmt.Errorf("update route %d: %w", r.ID, err)
		}
		metrics.RecordsStagedTotal.WithLabelValues("update").Inc()
	}

	zap.L().Debug("route batch flushed",
		zap.Int("inserts", len(b.inserts)),
		zap.Int("tracked", len(b.tracked)),
		zap.Int("deletes", len(b.deletes)))

	*b = *NewBatch()
	return nil
}

// insertOrAdopt inserts r.  When another writer created the same natural
// key first, r adopts that row's identity and is written as an update.
func insertOrAdopt(ctx context.Context, st Store, r *Record) error {
	err := st.Insert(ctx, r)
	if err == nil {
		metrics.RecordsStagedTotal.WithLabelValues("insert").Inc()
		return nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("insert route %q: %w", r.CanonicalRoute, err)
	}

	metrics.UniquenessRetriesTotal.Inc()
	k := r.Key()
	zap.L().Warn("route natural key taken, retrying as update",
		zap.String("entity_class", k.EntityClass),
		zap.Int64("entity_id", k.EntityID),
		zap.String("locale", k.Locale),
		zap.String("canonical", k.CanonicalRoute))

	existing, ferr := st.FindOne(ctx, k)
	if ferr != nil {
		return fmt.Errorf("reload route %q: %w", k.CanonicalRoute, ferr)
	}
	if existing == nil {
		return fmt.Errorf("insert route %q: %w", k.CanonicalRoute, err)
	}
	r.ID = existing.ID
	r.Created = existing.Created
	if uerr := st.Update(ctx, r); uerr != nil {
		return fmt.Errorf("update route %d after duplicate: %w", r.ID, uerr)
	}
	metrics.RecordsStagedTotal.WithLabelValues("update").Inc()
	return nil
}

// upsert stages the record for (entityType, e, l, d) in b and overwrites
// its mutable columns.  Calling it twice with the same inputs leaves one
// staged record with the same values.
func upsert(ctx context.Context, st Store, b *Batch, now time.Time,
	entityType string, e Entity, l localized, d Descriptor) (*Record, error) {

	canonical := ResolveCanonicalName(EntityCode(e), d)
	k := Key{
		EntityClass:    entityType,
		EntityID:       e.EntityID(),
		Locale:         l.locale,
		CanonicalRoute: canonical,
	}

	r, ok := b.lookup(k)
	if !ok {
		found, err := st.FindOne(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("find route %q/%s: %w", canonical, l.locale, err)
		}
		if found == nil {
			r = newRecord(k, now)
			b.insert(r)
		} else {
			r = found
			b.track(r)
		}
	}

	r.Slug = ResolvePath(l.slug, l.locale, d)
	r.Controller = d.Handler.String()
	r.CanonicalRoute = canonical

	zap.L().Debug("route staged",
		zap.String("entity_class", entityType),
		zap.Int64("entity_id", k.EntityID),
		zap.String("locale", l.locale),
		zap.String("canonical", canonical),
		zap.String("path", r.Slug))
	return r, nil
}
