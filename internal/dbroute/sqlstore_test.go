// internal/dbroute/sqlstore_test.go
//
// Unit-tests for SQLStore using sqlmock.
//
// Run: go test ./internal/dbroute -run SQL -v

package dbroute

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var routeCols = []string{
	"id", "canonical_route", "controller", "entity_id", "entity_class", "locale", "slug", "created",
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "mysql")), mock
}

func TestSQLStore_FindOne(t *testing.T) {
	st, mock := newMockStore(t)
	created := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM routes WHERE entity_class = ? AND entity_id = ? AND locale = ? AND canonical_route = ? LIMIT 1`,
	)).
		WithArgs("shop.Product", int64(1), "en", "product_W1").
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(11), "product_W1", "shop.Controller::Show", int64(1), "shop.Product", "en", "/shop/widget", created))

	r, err := st.FindOne(context.Background(), Key{"shop.Product", 1, "en", "product_W1"})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if r == nil || r.ID != 11 || r.Slug != "/shop/widget" {
		t.Fatalf("record = %+v", r)
	}
	if r.EntityID == nil || *r.EntityID != 1 || r.EntityClass == nil || *r.EntityClass != "shop.Product" {
		t.Fatalf("nullable columns not scanned: %+v", r)
	}
	if !r.Created.Equal(created) {
		t.Fatalf("created = %v", r.Created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_FindOne_NoRows(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes WHERE entity_class = ?`)).
		WillReturnRows(sqlmock.NewRows(routeCols))

	r, err := st.FindOne(context.Background(), Key{"shop.Product", 1, "en", "product_W1"})
	if err != nil || r != nil {
		t.Fatalf("FindOne = %+v, %v; want nil, nil", r, err)
	}
}

func TestSQLStore_FindByEntity(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes WHERE entity_class = ? AND entity_id = ? ORDER BY id`)).
		WithArgs("shop.Product", int64(1)).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(1), "product_W1", "c::m", int64(1), "shop.Product", "en", "/a", now).
			AddRow(int64(2), "product_W1", "c::m", int64(1), "shop.Product", "cs", "/b", now))

	rows, err := st.FindByEntity(context.Background(), "shop.Product", 1)
	if err != nil {
		t.Fatalf("FindByEntity: %v", err)
	}
	if len(rows) != 2 || rows[1].Locale != "cs" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestSQLStore_InsertSetsID(t *testing.T) {
	st, mock := newMockStore(t)
	r := newRecord(Key{"shop.Product", 1, "en", "product_W1"}, time.Now())
	r.Controller = "shop.Controller::Show"
	r.Slug = "/shop/widget"

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO routes`)).
		WithArgs("product_W1", "shop.Controller::Show", int64(1), "shop.Product", "en", "/shop/widget", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	if err := st.Insert(context.Background(), r); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if r.ID != 42 {
		t.Fatalf("id = %d, want 42", r.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_InsertDuplicate(t *testing.T) {
	st, mock := newMockStore(t)
	r := newRecord(Key{"shop.Product", 1, "en", "product_W1"}, time.Now())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO routes`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'ux_routes_natural'"})

	err := st.Insert(context.Background(), r)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestSQLStore_IsDuplicateTextFallback(t *testing.T) {
	if !isDuplicate(errors.New("UNIQUE constraint failed: routes.entity_class")) {
		t.Fatalf("sqlite-style message not recognised")
	}
	if isDuplicate(errors.New("connection refused")) {
		t.Fatalf("unrelated error treated as duplicate")
	}
	if isDuplicate(&mysql.MySQLError{Number: 1146, Message: "Table 'routes' doesn't exist"}) {
		t.Fatalf("mysql 1146 treated as duplicate")
	}
}

func TestSQLStore_SyncFlushesInOneTransaction(t *testing.T) {
	st, mock := newMockStore(t)
	s := NewSynchronizer(staticDiscovery{typePage: {pageDescriptor()}}, st, nil, Options{Now: fixedNow})

	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes WHERE entity_class = ?`)).
		WithArgs(typePage, int64(3), "cs", "page_3").
		WillReturnRows(sqlmock.NewRows(routeCols))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO routes`)).
		WithArgs("page_3", "site.Controller::Page", int64(3), typePage, "cs", "/about", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := s.OnEntityChanged(context.Background(), &page{id: 3, slug: "about"}, Created); err != nil {
		t.Fatalf("OnEntityChanged: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_DuplicateRetriedInsideTransaction(t *testing.T) {
	st, mock := newMockStore(t)
	s := NewSynchronizer(staticDiscovery{typePage: {pageDescriptor()}}, st, nil, Options{Now: fixedNow})

	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes WHERE entity_class = ?`)).
		WillReturnRows(sqlmock.NewRows(routeCols))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO routes`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes WHERE entity_class = ?`)).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(int64(9), "page_3", "site.Controller::Page", int64(3), typePage, "cs", "/stale", fixedNow()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE routes SET canonical_route = ?, controller = ?, locale = ?, slug = ? WHERE id = ?`)).
		WithArgs("page_3", "site.Controller::Page", "cs", "/about", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.OnEntityChanged(context.Background(), &page{id: 3, slug: "about"}, Created); err != nil {
		t.Fatalf("OnEntityChanged: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_FlushErrorRollsBack(t *testing.T) {
	st, mock := newMockStore(t)
	s := NewSynchronizer(staticDiscovery{typePage: {pageDescriptor()}}, st, nil, Options{Now: fixedNow})
	boom := errors.New("disk full")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM routes WHERE entity_class = ?`)).
		WillReturnRows(sqlmock.NewRows(routeCols))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO routes`)).WillReturnError(boom)
	mock.ExpectRollback()

	err := s.OnEntityChanged(context.Background(), &page{id: 3, slug: "about"}, Created)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped storage error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_TxStoreDoesNotCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	xdb := sqlx.NewDb(db, "mysql")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM routes WHERE id = ?`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := xdb.Beginx()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	b := NewBatch()
	b.Remove(&Record{ID: 5})
	if err := flushBatch(context.Background(), NewTxStore(tx), b); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
