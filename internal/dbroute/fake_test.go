// internal/dbroute/fake_test.go
//
// In-memory collaborators shared by the dbroute tests.
//
// memStore enforces the natural-key unique index the way the SQL schema
// does, and hands out copies so tests observe the same identity semantics
// as rows read from a database.

package dbroute

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

//
// memStore
//

type memStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]Record
	inserts int
	updates int
	deletes int
}

func newMemStore() *memStore { return &memStore{rows: map[int64]Record{}} }

func (m *memStore) FindOne(_ context.Context, k Key) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Key() == k {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByEntity(_ context.Context, class string, id int64) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for _, r := range m.rows {
		k := r.Key()
		if k.EntityClass == class && k.EntityID == id {
			cp := r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Insert(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Key() == r.Key() {
			return fmt.Errorf("%w: key %v", ErrDuplicate, r.Key())
		}
	}
	m.nextID++
	r.ID = m.nextID
	m.rows[r.ID] = *r
	m.inserts++
	return nil
}

func (m *memStore) Update(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return fmt.Errorf("no row %d", r.ID)
	}
	m.rows[r.ID] = *r
	m.updates++
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	m.deletes++
	return nil
}

func (m *memStore) all() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) byKey() map[Key]Record {
	out := map[Key]Record{}
	for _, r := range m.all() {
		out[r.Key()] = r
	}
	return out
}

//
// racingStore inserts a competing row right before the first Insert,
// simulating a concurrent writer that won the find-or-create race.
//

type racingStore struct {
	*memStore
	raced bool
}

func (s *racingStore) Insert(ctx context.Context, r *Record) error {
	if !s.raced {
		s.raced = true
		rival := *r
		rival.Slug = "/stale"
		if err := s.memStore.Insert(ctx, &rival); err != nil {
			return err
		}
	}
	return s.memStore.Insert(ctx, r)
}

//
// countingCache
//

type countingCache struct{ calls map[string]int }

func newCountingCache() *countingCache { return &countingCache{calls: map[string]int{}} }

func (c *countingCache) Invalidate(tag string) { c.calls[tag]++ }

//
// staticDiscovery
//

type staticDiscovery Discovered

func (s staticDiscovery) Discover(context.Context) (Discovered, error) {
	return Discovered(s), nil
}

//
// entity fixtures
//

const (
	typeProduct = "shop.Product"
	typePage    = "site.Page"
	typeNote    = "site.Note"
)

type product struct {
	id           int64
	code         string
	slug         string
	translations []Translation
}

func (p *product) EntityType() string          { return typeProduct }
func (p *product) EntityID() int64             { return p.id }
func (p *product) Ident() string               { return p.code }
func (p *product) Slug() string                { return p.slug }
func (p *product) Translations() []Translation { return p.translations }

type productTranslation struct {
	id     int64
	locale string
	slug   string
	owner  *product
}

func (t *productTranslation) EntityType() string { return "shop.ProductTranslation" }
func (t *productTranslation) EntityID() int64    { return t.id }
func (t *productTranslation) Locale() string     { return t.locale }
func (t *productTranslation) Slug() string       { return t.slug }
func (t *productTranslation) Owner() Entity {
	if t.owner == nil {
		return nil
	}
	return t.owner
}

// bareTranslation has no slug accessor, so the owner's slug applies.
type bareTranslation struct{ locale string }

func (t bareTranslation) Locale() string { return t.locale }

func newProduct(id int64, code string, slugs map[string]string) *product {
	p := &product{id: id, code: code}
	locales := make([]string, 0, len(slugs))
	for l := range slugs {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	for i, l := range locales {
		p.translations = append(p.translations, &productTranslation{
			id: id*100 + int64(i), locale: l, slug: slugs[l], owner: p,
		})
	}
	return p
}

// page is sluggable only: no locale, no ident.
type page struct {
	id   int64
	slug string
}

func (p *page) EntityType() string { return typePage }
func (p *page) EntityID() int64    { return p.id }
func (p *page) Slug() string       { return p.slug }

// note is sluggable and localizable.
type note struct {
	id     int64
	slug   string
	locale string
}

func (n *note) EntityType() string { return typeNote }
func (n *note) EntityID() int64    { return n.id }
func (n *note) Slug() string       { return n.slug }
func (n *note) Locale() string     { return n.locale }

//
// entity source
//

type memEntities map[string][]Entity

func (m memEntities) FindAll(_ context.Context, typ string) ([]Entity, error) {
	list, ok := m[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEntitySource, typ)
	}
	return list, nil
}

//
// descriptors
//

func productDescriptor() Descriptor {
	return Descriptor{
		EntityType: typeProduct,
		NamePrefix: "product_",
		PathTemplates: map[string]string{
			"en": "/shop/{slug}",
			"cs": "/obchod/{slug}",
		},
		Handler: HandlerRef{Controller: "shop.Controller", Method: "Show"},
	}
}

func pageDescriptor() Descriptor {
	return Descriptor{
		EntityType: typePage,
		NamePrefix: "page_",
		Handler:    HandlerRef{Controller: "site.Controller", Method: "Page"},
	}
}
