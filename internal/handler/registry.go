// internal/handler/registry.go
//
// Controller registry (cycle-free).
//
// Context
// -------
// A Controller groups HTTP handler methods.  Each method may carry one or
// more declarative Routes that bind it to an entity type; the dbroute
// discovery engine reads those bindings and materializes one persisted route
// per entity record and locale.  Stateless controllers call Register() from
// an init() function; controllers that need a repository are registered by
// the bootstrap code once their dependencies exist.
//
// Workflow
// --------
//  1. Controller is registered (init() or bootstrap).
//  2. dbroute.Discovery walks All() and reads every Method's Routes.
//  3. The routing dispatcher resolves "Controller::Method" references via
//     Lookup() when it mounts the generated route table.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.

package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
)

// Route is the declarative descriptor attached to a handler method.  Entity
// is required; Routes without it are ignored during discovery.  Name is the
// route-name fragment appended to the controller Prefix.  Path maps a locale
// to a template containing a literal "{slug}" placeholder.
type Route struct {
	Entity string
	Name   string
	Path   map[string]string
}

// Method is one handler method and its entity route bindings.
type Method struct {
	Name    string
	Handler http.HandlerFunc
	Routes  []Route
}

// Controller contract.
//
// Prefix() is the class-level route-name fragment; return "" when the
// controller declares none.
type Controller interface {
	Name() string
	Prefix() string
	Methods() []Method
}

// Loader is optional.  If a Controller implements it, discovery calls
// Load(ctx) before reading its methods; a failure aborts the scan.
type Loader interface {
	Load(ctx context.Context) error
}

// Registry holds controllers keyed by name.  The zero value is unusable;
// construct with NewRegistry.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Controller
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: map[string]Controller{}}
}

// Register adds c, replacing any controller registered under the same name.
func (r *Registry) Register(c Controller) {
	r.mu.Lock()
	r.m[c.Name()] = c
	r.mu.Unlock()
}

// All returns every registered controller sorted by name.
func (r *Registry) All() []Controller {
	r.mu.RLock()
	out := make([]Controller, 0, len(r.m))
	for _, c := range r.m {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Lookup returns the handler for controller/method or nil.
func (r *Registry) Lookup(controller, method string) http.HandlerFunc {
	r.mu.RLock()
	c, ok := r.m[controller]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	for _, m := range c.Methods() {
		if m.Name == method {
			return m.Handler
		}
	}
	return nil
}

// Len reports the number of registered controllers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

//
// process-wide registry
//

var std = NewRegistry()

// Default returns the process-wide registry used by Register.
func Default() *Registry { return std }

// Register is invoked from controller init() functions.
func Register(c Controller) { std.Register(c) }

// All returns every controller in the process-wide registry.
func All() []Controller { return std.All() }

// Lookup resolves a handler in the process-wide registry.
func Lookup(controller, method string) http.HandlerFunc {
	return std.Lookup(controller, method)
}
