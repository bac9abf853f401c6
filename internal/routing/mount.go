// internal/routing/mount.go
//
// Mount turns a dbroute.Table into a chi router.
//
// Every entry becomes one GET route on its literal path.  Paths that chi
// would read as a pattern ("{" or "*"), or that lack a leading slash, are
// skipped so that an entry only ever matches its own slug.

package routing

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/dbroute"
)

// Mount builds a router for t and reports how many entries were mounted.
func Mount(t *dbroute.Table, resolve Resolver) (chi.Router, int) {
	r := chi.NewRouter()
	mounted := 0

	for _, e := range t.Entries() {
		if !strings.HasPrefix(e.Path, "/") || strings.ContainsAny(e.Path, "{}*") {
			zap.L().Warn("route path not mountable",
				zap.String("key", e.Key),
				zap.String("path", e.Path))
			continue
		}

		var h http.HandlerFunc
		if resolve != nil {
			h = resolve(e.Handler.Controller, e.Handler.Method)
		}
		if h == nil {
			zap.L().Warn("route handler not found",
				zap.String("key", e.Key),
				zap.String("handler", e.Handler.String()))
			continue
		}

		r.Get(e.Path, withParams(e.Params, h))
		mounted++
	}
	return r, mounted
}

func withParams(p dbroute.Params, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r.WithContext(WithParams(r.Context(), p)))
	}
}
