// internal/dbroute/discovery.go
//
// Discovery engine.
//
// Context
// -------
// Walks every registered controller, resolves its class-level name fragment,
// and collects each method Route that names an entity type.  The result is
// keyed by entity type:
//
//	"catalog.Product" → [{NamePrefix: "catalog_product_", Handler: …}, …]
//
// Discovery never touches the database, so callers recompute it per
// operation and keep the result only for the duration of that operation.
//
// Notes
// -----
// • An empty or nil source yields an empty map, not an error.
// • A controller whose Load() fails aborts the whole scan.

package dbroute

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/handler"
)

// ControllerSource enumerates controllers.  *handler.Registry satisfies it.
type ControllerSource interface {
	All() []handler.Controller
}

// Discoverer is the contract the Synchronizer and Loader depend on.
type Discoverer interface {
	Discover(ctx context.Context) (Discovered, error)
}

// Discovery reads entity route declarations from a ControllerSource.
type Discovery struct {
	src ControllerSource
}

// NewDiscovery returns a Discovery over src.  src may be nil.
func NewDiscovery(src ControllerSource) *Discovery {
	return &Discovery{src: src}
}

// Discover groups descriptors by entity type.  Controllers are visited in
// the order the source returns them; methods and routes in declaration
// order.
func (d *Discovery) Discover(ctx context.Context) (Discovered, error) {
	out := Discovered{}
	if d == nil || d.src == nil {
		return out, nil
	}

	for _, c := range d.src.All() {
		if l, ok := c.(handler.Loader); ok {
			if err := l.Load(ctx); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrControllerLoad, c.Name(), err)
			}
		}

		prefix := c.Prefix()
		for _, m := range c.Methods() {
			for _, r := range m.Routes {
				if r.Entity == "" {
					continue
				}
				out[r.Entity] = append(out[r.Entity], Descriptor{
					EntityType:    r.Entity,
					NamePrefix:    prefix + r.Name,
					PathTemplates: copyPaths(r.Path),
					Handler:       HandlerRef{Controller: c.Name(), Method: m.Name},
				})
			}
		}
	}

	zap.L().Debug("route discovery",
		zap.Int("entity_types", len(out)))
	return out, nil
}

func copyPaths(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
