// components/catalog/repository.go
//
// sqlx repository with route lifecycle hooks.
//
// Context
// -------
// Every write goes through the Repository so that route records stay in
// step with the catalog:
//
//   • SaveProduct, SaveTranslation, SavePage commit first, then call
//     Syncer.OnEntityChanged.  A translation is synced through its product.
//   • DeleteProduct, DeletePage ask Syncer.OnEntityRemoving for the staged
//     route deletes and flush them inside the delete transaction.
//
// FindProducts and FindPages back the bulk loader through RegisterSources.
//
// Notes
// -----
// • A blank translation or page slug is derived from its title with
//   routing.MakeSlug.
// • Oxford commas, two spaces after periods.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/dbroute"
	"github.com/yanizio/dbroute/internal/routing"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("catalog: not found")

// Syncer is the route lifecycle contract.  *dbroute.Synchronizer satisfies it.
type Syncer interface {
	OnEntityChanged(ctx context.Context, e dbroute.Entity, kind dbroute.ChangeKind) error
	OnEntityRemoving(ctx context.Context, e dbroute.Entity) (*dbroute.Batch, error)
}

const (
	qProducts        = `SELECT id, code, created FROM products ORDER BY id`
	qProductByID     = `SELECT id, code, created FROM products WHERE id = ?`
	qTranslations    = `SELECT id, product_id, locale, slug, title FROM product_translations ORDER BY product_id, id`
	qTranslationsFor = `SELECT id, product_id, locale, slug, title FROM product_translations WHERE product_id = ? ORDER BY id`
	qTranslationBy   = `SELECT product_id FROM product_translations WHERE locale = ? AND slug = ? LIMIT 1`
	qInsertProduct   = `INSERT INTO products (code, created) VALUES (?, ?)`
	qUpdateProduct   = `UPDATE products SET code = ? WHERE id = ?`
	qDeleteProduct   = `DELETE FROM products WHERE id = ?`
	qInsertTrans     = `INSERT INTO product_translations (product_id, locale, slug, title) VALUES (?, ?, ?, ?)`
	qUpdateTrans     = `UPDATE product_translations SET locale = ?, slug = ?, title = ? WHERE id = ?`
	qDeleteTransFor  = `DELETE FROM product_translations WHERE product_id = ?`
	qPages           = `SELECT id, locale, slug, title FROM pages ORDER BY id`
	qPageBy          = `SELECT id, locale, slug, title FROM pages WHERE locale = ? AND slug = ? LIMIT 1`
	qInsertPage      = `INSERT INTO pages (locale, slug, title) VALUES (?, ?, ?)`
	qUpdatePage      = `UPDATE pages SET locale = ?, slug = ?, title = ? WHERE id = ?`
	qDeletePage      = `DELETE FROM pages WHERE id = ?`
)

// Repository persists catalog entities.
type Repository struct {
	db   *sqlx.DB
	sync Syncer
	now  func() time.Time
}

// NewRepository wires a Repository.  sync may be nil, in which case no
// route records are maintained.
func NewRepository(db *sqlx.DB, sync Syncer) *Repository {
	return &Repository{db: db, sync: sync, now: time.Now}
}

// RegisterSources binds the catalog finders into reg for the bulk loader.
func (r *Repository) RegisterSources(reg *dbroute.EntityRegistry) {
	reg.Register(TypeProduct, func(ctx context.Context) ([]dbroute.Entity, error) {
		ps, err := r.FindProducts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dbroute.Entity, len(ps))
		for i, p := range ps {
			out[i] = p
		}
		return out, nil
	})
	reg.Register(TypePage, func(ctx context.Context) ([]dbroute.Entity, error) {
		ps, err := r.FindPages(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dbroute.Entity, len(ps))
		for i, p := range ps {
			out[i] = p
		}
		return out, nil
	})
}

/*──────────────────────────── products ─────────────────────────────────────*/

// FindProducts returns every product with its translations.
func (r *Repository) FindProducts(ctx context.Context) ([]*Product, error) {
	var products []*Product
	if err := r.db.SelectContext(ctx, &products, qProducts); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	var trans []*ProductTranslation
	if err := r.db.SelectContext(ctx, &trans, qTranslations); err != nil {
		return nil, fmt.Errorf("select product translations: %w", err)
	}

	byID := make(map[int64]*Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, t := range trans {
		if p := byID[t.ProductID]; p != nil {
			p.attach(t)
		}
	}
	return products, nil
}

// FindProduct returns the product with id and its translations.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := r.db.GetContext(ctx, &p, qProductByID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var trans []*ProductTranslation
	if err := r.db.SelectContext(ctx, &trans, qTranslationsFor, id); err != nil {
		return nil, err
	}
	for _, t := range trans {
		p.attach(t)
	}
	return &p, nil
}

// FindProductBySlug returns the product whose translation in locale has slug.
func (r *Repository) FindProductBySlug(ctx context.Context, locale, slug string) (*Product, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, qTranslationBy, locale, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.FindProduct(ctx, id)
}

// SaveProduct inserts or updates p and its translations in one transaction,
// then synchronizes its routes.
func (r *Repository) SaveProduct(ctx context.Context, p *Product) error {
	kind := dbroute.Updated
	if p.ID == 0 {
		kind = dbroute.Created
	}

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if p.ID == 0 {
			if p.Created.IsZero() {
				p.Created = r.now()
			}
			res, err := tx.ExecContext(ctx, qInsertProduct, p.Code, p.Created)
			if err != nil {
				return fmt.Errorf("insert product: %w", err)
			}
			if p.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		} else if _, err := tx.ExecContext(ctx, qUpdateProduct, p.Code, p.ID); err != nil {
			return fmt.Errorf("update product %d: %w", p.ID, err)
		}

		for _, t := range p.Trans {
			p.attach(t)
			if err := saveTranslation(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.changed(ctx, p, kind)
}

// SaveTranslation inserts or updates t as a translation of p, then
// synchronizes p's routes through the translation's own lifecycle event.
func (r *Repository) SaveTranslation(ctx context.Context, p *Product, t *ProductTranslation) error {
	if p.ID == 0 {
		return fmt.Errorf("save translation: product not persisted")
	}
	kind := dbroute.Updated
	if t.ID == 0 {
		kind = dbroute.Created
	}
	p.attach(t)

	if err := r.inTx(ctx, func(tx *sqlx.Tx) error { return saveTranslation(ctx, tx, t) }); err != nil {
		return err
	}
	return r.changed(ctx, t, kind)
}

func saveTranslation(ctx context.Context, tx *sqlx.Tx, t *ProductTranslation) error {
	if t.URLSlug == "" {
		t.URLSlug = routing.MakeSlug(t.Title)
	}
	if t.ID == 0 {
		res, err := tx.ExecContext(ctx, qInsertTrans, t.ProductID, t.Lang, t.URLSlug, t.Title)
		if err != nil {
			return fmt.Errorf("insert translation %s: %w", t.Lang, err)
		}
		t.ID, err = res.LastInsertId()
		return err
	}
	if _, err := tx.ExecContext(ctx, qUpdateTrans, t.Lang, t.URLSlug, t.Title, t.ID); err != nil {
		return fmt.Errorf("update translation %d: %w", t.ID, err)
	}
	return nil
}

// DeleteProduct removes p, its translations, and its route records in one
// transaction.
func (r *Repository) DeleteProduct(ctx context.Context, p *Product) error {
	return r.removing(ctx, p, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, qDeleteTransFor, p.ID); err != nil {
			return fmt.Errorf("delete translations of %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, qDeleteProduct, p.ID); err != nil {
			return fmt.Errorf("delete product %d: %w", p.ID, err)
		}
		return nil
	})
}

/*────────────────────────────── pages ──────────────────────────────────────*/

// FindPages returns every page.
func (r *Repository) FindPages(ctx context.Context) ([]*Page, error) {
	var pages []*Page
	if err := r.db.SelectContext(ctx, &pages, qPages); err != nil {
		return nil, fmt.Errorf("select pages: %w", err)
	}
	return pages, nil
}

// FindPageBySlug returns the page with (locale, slug).
func (r *Repository) FindPageBySlug(ctx context.Context, locale, slug string) (*Page, error) {
	var p Page
	if err := r.db.GetContext(ctx, &p, qPageBy, locale, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SavePage inserts or updates p, then synchronizes its route.
func (r *Repository) SavePage(ctx context.Context, p *Page) error {
	kind := dbroute.Updated
	if p.ID == 0 {
		kind = dbroute.Created
	}
	if p.URLSlug == "" {
		p.URLSlug = routing.MakeSlug(p.Title)
	}

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if p.ID == 0 {
			res, err := tx.ExecContext(ctx, qInsertPage, p.Lang, p.URLSlug, p.Title)
			if err != nil {
				return fmt.Errorf("insert page: %w", err)
			}
			p.ID, err = res.LastInsertId()
			return err
		}
		if _, err := tx.ExecContext(ctx, qUpdatePage, p.Lang, p.URLSlug, p.Title, p.ID); err != nil {
			return fmt.Errorf("update page %d: %w", p.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.changed(ctx, p, kind)
}

// DeletePage removes p and its route records in one transaction.
func (r *Repository) DeletePage(ctx context.Context, p *Page) error {
	return r.removing(ctx, p, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, qDeletePage, p.ID); err != nil {
			return fmt.Errorf("delete page %d: %w", p.ID, err)
		}
		return nil
	})
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (r *Repository) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) changed(ctx context.Context, e dbroute.Entity, kind dbroute.ChangeKind) error {
	if r.sync == nil {
		return nil
	}
	if err := r.sync.OnEntityChanged(ctx, e, kind); err != nil {
		zap.L().Error("catalog route sync failed",
			zap.String("entity_class", e.EntityType()),
			zap.Int64("entity_id", e.EntityID()),
			zap.Error(err))
		return fmt.Errorf("sync routes of %s %d: %w", e.EntityType(), e.EntityID(), err)
	}
	return nil
}

// removing stages route deletes for e, runs del, and flushes the staged
// deletes in the same transaction.
func (r *Repository) removing(ctx context.Context, e dbroute.Entity, del func(*sqlx.Tx) error) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		var batch *dbroute.Batch
		if r.sync != nil {
			var err error
			if batch, err = r.sync.OnEntityRemoving(ctx, e); err != nil {
				return err
			}
		}
		if err := del(tx); err != nil {
			return err
		}
		if batch == nil {
			return nil
		}
		return batch.Flush(ctx, dbroute.NewTxStore(tx))
	})
}
