// components/catalog/entity.go
//
// Catalog entities.
//
// Context
// -------
// Product is translatable: its per-locale slugs live in
// product_translations rows, each of which is a dbroute.TranslationRecord
// pointing back at its product.  Page is non-translatable and carries its
// own locale and slug.  Both are routed by the catalog controller.
//
// Notes
// -----
// • Struct fields mirror the table columns; the route-facing accessors
//   (Slug, Locale, Ident) are methods.

package catalog

import (
	"time"

	"github.com/yanizio/dbroute/internal/dbroute"
)

// Entity types as stored in routes.entity_class.
const (
	TypeProduct            = "catalog.Product"
	TypeProductTranslation = "catalog.ProductTranslation"
	TypePage               = "catalog.Page"
)

// compile-time assertions
var (
	_ dbroute.Identable         = (*Product)(nil)
	_ dbroute.Translatable      = (*Product)(nil)
	_ dbroute.TranslationRecord = (*ProductTranslation)(nil)
	_ dbroute.Sluggable         = (*ProductTranslation)(nil)
	_ dbroute.Sluggable         = (*Page)(nil)
	_ dbroute.Localizable       = (*Page)(nil)
)

// Product mirrors one row of `products`.
type Product struct {
	ID      int64     `db:"id"      json:"id"`
	Code    string    `db:"code"    json:"code"`
	Created time.Time `db:"created" json:"created"`

	Trans []*ProductTranslation `db:"-" json:"translations"`
}

func (p *Product) EntityType() string { return TypeProduct }
func (p *Product) EntityID() int64    { return p.ID }
func (p *Product) Ident() string      { return p.Code }

// Translations implements dbroute.Translatable.
func (p *Product) Translations() []dbroute.Translation {
	out := make([]dbroute.Translation, 0, len(p.Trans))
	for _, t := range p.Trans {
		out = append(out, t)
	}
	return out
}

// Translation returns p's translation for locale or nil.
func (p *Product) Translation(locale string) *ProductTranslation {
	for _, t := range p.Trans {
		if t.Lang == locale {
			return t
		}
	}
	return nil
}

// attach adds t to p, replacing an existing translation for the same locale.
func (p *Product) attach(t *ProductTranslation) {
	t.owner = p
	t.ProductID = p.ID
	for i, cur := range p.Trans {
		if cur == t || cur.Lang == t.Lang {
			p.Trans[i] = t
			return
		}
	}
	p.Trans = append(p.Trans, t)
}

// ProductTranslation mirrors one row of `product_translations`.
type ProductTranslation struct {
	ID        int64  `db:"id"         json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Lang      string `db:"locale"     json:"locale"`
	URLSlug   string `db:"slug"       json:"slug"`
	Title     string `db:"title"      json:"title"`

	owner *Product
}

func (t *ProductTranslation) EntityType() string { return TypeProductTranslation }
func (t *ProductTranslation) EntityID() int64    { return t.ID }
func (t *ProductTranslation) Locale() string     { return t.Lang }
func (t *ProductTranslation) Slug() string       { return t.URLSlug }

// Owner implements dbroute.TranslationRecord.
func (t *ProductTranslation) Owner() dbroute.Entity {
	if t.owner == nil {
		return nil
	}
	return t.owner
}

// Page mirrors one row of `pages`.
type Page struct {
	ID      int64  `db:"id"     json:"id"`
	Lang    string `db:"locale" json:"locale"`
	URLSlug string `db:"slug"   json:"slug"`
	Title   string `db:"title"  json:"title"`
}

func (p *Page) EntityType() string { return TypePage }
func (p *Page) EntityID() int64    { return p.ID }
func (p *Page) Slug() string       { return p.URLSlug }
func (p *Page) Locale() string     { return p.Lang }
