// internal/dbroute/sqlstore.go
//
// sqlx-backed Store for the `routes` table.
//
// Context
// -------
// SQLStore runs against either a *sqlx.DB (own transactions via InTx) or a
// caller-owned *sqlx.Tx (NewTxStore), which is how entity removal flushes
// its staged deletes inside the transaction that removes the entity.
//
// Notes
// -----
// • Queries use `?` placeholders (MySQL / MariaDB).
// • Duplicate-key detection understands MySQL error 1062 and falls back to
//   message matching for other drivers.

package dbroute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const recordColumns = `id, canonical_route, controller, entity_id, entity_class, locale, slug, created`

const (
	qFindOne = `SELECT ` + recordColumns + ` FROM routes
	    WHERE entity_class = ? AND entity_id = ? AND locale = ? AND canonical_route = ?
	    LIMIT 1`
	qFindByEntity = `SELECT ` + recordColumns + ` FROM routes
	    WHERE entity_class = ? AND entity_id = ?
	    ORDER BY id`
	qFindAll = `SELECT ` + recordColumns + ` FROM routes ORDER BY id`
	qInsert  = `INSERT INTO routes
	    (canonical_route, controller, entity_id, entity_class, locale, slug, created)
	    VALUES (?, ?, ?, ?, ?, ?, ?)`
	qUpdate = `UPDATE routes
	    SET canonical_route = ?, controller = ?, locale = ?, slug = ?
	    WHERE id = ?`
	qDelete = `DELETE FROM routes WHERE id = ?`
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// SQLStore implements TxStore over sqlx.
type SQLStore struct {
	ext sqlx.ExtContext
	db  *sqlx.DB // nil when bound to a caller transaction
}

// NewSQLStore returns a store that opens its own transactions on db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{ext: db, db: db}
}

// NewTxStore returns a store bound to a caller-owned transaction.  InTx on
// it runs fn directly; the caller commits.
func NewTxStore(tx *sqlx.Tx) *SQLStore {
	return &SQLStore{ext: tx}
}

// FindOne returns the record with natural key k, or nil.
func (s *SQLStore) FindOne(ctx context.Context, k Key) (*Record, error) {
	var r Record
	err := sqlx.GetContext(ctx, s.ext, &r, qFindOne,
		k.EntityClass, k.EntityID, k.Locale, k.CanonicalRoute)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByEntity returns every record bound to (entityClass, entityID).
func (s *SQLStore) FindByEntity(ctx context.Context, entityClass string, entityID int64) ([]*Record, error) {
	var rows []*Record
	if err := sqlx.SelectContext(ctx, s.ext, &rows, qFindByEntity, entityClass, entityID); err != nil {
		return nil, err
	}
	return rows, nil
}

// All returns every record ordered by id.  Used by operator tooling.
func (s *SQLStore) All(ctx context.Context) ([]*Record, error) {
	var rows []*Record
	if err := sqlx.SelectContext(ctx, s.ext, &rows, qFindAll); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert writes r and sets r.ID.
func (s *SQLStore) Insert(ctx context.Context, r *Record) error {
	res, err := s.ext.ExecContext(ctx, qInsert,
		r.CanonicalRoute, r.Controller, r.EntityID, r.EntityClass, r.Locale, r.Slug, r.Created)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// Update overwrites the mutable columns of the row with r.ID.
func (s *SQLStore) Update(ctx context.Context, r *Record) error {
	_, err := s.ext.ExecContext(ctx, qUpdate,
		r.CanonicalRoute, r.Controller, r.Locale, r.Slug, r.ID)
	if err != nil && isDuplicate(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// Delete removes the row with id.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	_, err := s.ext.ExecContext(ctx, qDelete, id)
	return err
}

// InTx runs fn inside one transaction, committing when fn returns nil.
func (s *SQLStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(NewTxStore(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// isDuplicate recognises unique-index violations without requiring a
// specific driver.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "duplicate entry") ||
		strings.Contains(low, "duplicate key") ||
		strings.Contains(low, "unique constraint failed")
}
