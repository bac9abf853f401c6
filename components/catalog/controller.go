// components/catalog/controller.go
//
// Catalog controller: product and page handlers plus their route bindings.
//
// Context
// -------
// ShowProduct is bound to catalog.Product with per-locale path templates,
// so every translation gets a route such as /en/products/<slug>.  ShowPage
// is bound to catalog.Page without templates; a page is served at
// "/<slug>".  Both handlers read the matched route's params from the
// request context and answer JSON.
//
// Notes
// -----
// • Registered by bootstrap code once the repository exists.
// • Load fails when no repository is configured, which aborts discovery.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/handler"
	"github.com/yanizio/dbroute/internal/routing"
)

// ControllerName is the registry name used in route handler references.
const ControllerName = "catalog.Controller"

// compile-time assertions
var (
	_ handler.Controller = (*Controller)(nil)
	_ handler.Loader     = (*Controller)(nil)
)

// Controller serves catalog entities.
type Controller struct {
	repo *Repository
}

// NewController returns a controller reading through repo.
func NewController(repo *Repository) *Controller { return &Controller{repo: repo} }

func (c *Controller) Name() string   { return ControllerName }
func (c *Controller) Prefix() string { return "catalog_" }

// Load implements handler.Loader.
func (c *Controller) Load(context.Context) error {
	if c.repo == nil {
		return errors.New("catalog repository not configured")
	}
	return nil
}

// Methods implements handler.Controller.
func (c *Controller) Methods() []handler.Method {
	return []handler.Method{
		{
			Name:    "ShowProduct",
			Handler: c.showProduct,
			Routes: []handler.Route{{
				Entity: TypeProduct,
				Name:   "product_",
				Path: map[string]string{
					"en": "/en/products/{slug}",
					"cs": "/cs/produkty/{slug}",
				},
			}},
		},
		{
			Name:    "ShowPage",
			Handler: c.showPage,
			Routes:  []handler.Route{{Entity: TypePage, Name: "page_"}},
		},
	}
}

type productView struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Locale    string `json:"locale"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Canonical string `json:"canonical"`
}

func (c *Controller) showProduct(w http.ResponseWriter, r *http.Request) {
	params, ok := routing.ParamsFromContext(r.Context())
	if !ok {
		http.NotFound(w, r)
		return
	}
	p, err := c.repo.FindProductBySlug(r.Context(), params.Locale, params.Slug)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	t := p.Translation(params.Locale)
	if t == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, productView{
		ID:        p.ID,
		Code:      p.Code,
		Locale:    t.Lang,
		Slug:      t.URLSlug,
		Title:     t.Title,
		Canonical: params.Canonical,
	})
}

func (c *Controller) showPage(w http.ResponseWriter, r *http.Request) {
	params, ok := routing.ParamsFromContext(r.Context())
	if !ok {
		http.NotFound(w, r)
		return
	}
	p, err := c.repo.FindPageBySlug(r.Context(), params.Locale, params.Slug)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	zap.L().Error("catalog lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("catalog response encode failed", zap.Error(err))
	}
}
