// internal/routing/dispatcher.go
//
// Route-table dispatcher (chi router cached in the "routing" namespace).
//
// Context
// -------
// The generated route table is materialized as a chi router the first time
// a request arrives.  The router is cached in internal/cache under the
// routing tag; any writer that invalidates that tag (the synchronizer after
// each entity change, the loader after each rebuild) causes the next
// request to build a fresh router from a new one-shot dbroute.Loader.
//
// Workflow
// --------
//  1. ServeHTTP asks router() for the cached handler.
//  2. On a miss, singleflight coalesces concurrent rebuilds into one Load.
//  3. Mount() turns every table entry into r.Get(path, handler).
//  4. The router is cached unless an invalidation raced the rebuild.
//
// Notes
// -----
// • Rebuilds run detached from the triggering request's cancellation.
// • A failed rebuild answers 503 and is retried on the next request.

package routing

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/dbroute/internal/cache"
	"github.com/yanizio/dbroute/internal/dbroute"
)

const routerKey = "router"

// TableLoader produces a route table.  *dbroute.Loader satisfies it.
type TableLoader interface {
	Load(ctx context.Context) (*dbroute.Table, error)
}

// LoaderFactory returns a fresh, unused TableLoader per rebuild.
type LoaderFactory func() TableLoader

// Resolver maps a controller/method pair to its handler.  handler.Lookup
// satisfies it.
type Resolver func(controller, method string) http.HandlerFunc

// Dispatcher serves requests through the cached route-table router.
type Dispatcher struct {
	newLoader LoaderFactory
	resolve   Resolver
	cache     *cache.LRU
	tag       string
	gen       atomic.Uint64
	group     singleflight.Group
}

// NewDispatcher wires a Dispatcher.  tag defaults to dbroute.DefaultCacheTag.
func NewDispatcher(newLoader LoaderFactory, resolve Resolver, c *cache.LRU, tag string) *Dispatcher {
	if tag == "" {
		tag = dbroute.DefaultCacheTag
	}
	return &Dispatcher{newLoader: newLoader, resolve: resolve, cache: c, tag: tag}
}

// Invalidate drops the cached router when tag is the dispatcher's tag and
// forwards to the underlying cache.  It satisfies dbroute.Invalidator.
func (d *Dispatcher) Invalidate(tag string) {
	if tag == d.tag {
		d.gen.Add(1)
	}
	d.cache.Invalidate(tag)
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := d.router(r.Context())
	if err != nil {
		zap.L().Error("route table unavailable", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	// Route on the full path even when mounted under another chi router.
	if chi.RouteContext(r.Context()) != nil {
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, nil))
	}
	h.ServeHTTP(w, r)
}

// Warm builds the router ahead of the first request.
func (d *Dispatcher) Warm(ctx context.Context) error {
	_, err := d.router(ctx)
	return err
}

func (d *Dispatcher) router(ctx context.Context) (http.Handler, error) {
	if v, ok := d.cache.Get(d.tag, routerKey); ok {
		return v.(http.Handler), nil
	}

	v, err, shared := d.group.Do(routerKey, func() (any, error) {
		if v, ok := d.cache.Get(d.tag, routerKey); ok {
			return v, nil
		}

		gen := d.gen.Load()
		table, err := d.newLoader().Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		rt, mounted := Mount(table, d.resolve)
		if d.gen.Load() == gen {
			d.cache.Add(d.tag, routerKey, rt)
		}

		zap.L().Info("route table mounted",
			zap.Int("entries", table.Len()),
			zap.Int("mounted", mounted))
		return rt, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		zap.L().Debug("route table rebuild shared")
	}
	return v.(http.Handler), nil
}
