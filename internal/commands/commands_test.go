package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/dbroute/internal/app"
	"github.com/yanizio/dbroute/internal/config"
	"github.com/yanizio/dbroute/internal/handler"
)

func testConfig() *config.Config {
	return &config.Config{Routing: config.Routing{
		EnabledLocales: []string{"cs", "en"},
		DefaultLocale:  "cs",
		CacheNamespace: "routing",
		CacheCapacity:  8,
	}}
}

func testDeps(open func(ctx context.Context, cfg *config.Config) (*app.App, error)) Deps {
	return Deps{
		LoadConfig: func() (*config.Config, error) { return testConfig(), nil },
		OpenApp:    open,
		Offline: func(cfg *config.Config) *app.App {
			return app.New(cfg, nil, handler.NewRegistry())
		},
	}
}

func run(t *testing.T, deps Deps, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(deps)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("routesync %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestLocalesCmd(t *testing.T) {
	out := run(t, testDeps(nil), "locales")
	if !strings.Contains(out, "čeština") || !strings.Contains(out, "fi fi-gb") {
		t.Fatalf("output = %s", out)
	}
}

func TestDiscoverCmd_JSON(t *testing.T) {
	out := run(t, testDeps(nil), "discover", "-o", "json")

	var views []descriptorView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(views) != 2 {
		t.Fatalf("descriptors = %+v", views)
	}
	if views[0].Entity != "catalog.Page" || views[1].Prefix != "catalog_product_" {
		t.Fatalf("descriptors = %+v", views)
	}
	if views[1].Templates["en"] != "/en/products/{slug}" {
		t.Fatalf("templates = %v", views[1].Templates)
	}
}

func TestMigrateCmd_Print(t *testing.T) {
	out := run(t, testDeps(nil), "migrate", "--print")
	if !strings.Contains(out, "CREATE TABLE IF NOT EXISTS routes") ||
		!strings.Contains(out, "CREATE TABLE IF NOT EXISTS product_translations") {
		t.Fatalf("output = %s", out)
	}
}

func TestRebuildCmd_EmptyCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM pages ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "locale", "slug", "title"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM products ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "created"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM product_translations ORDER BY product_id, id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "locale", "slug", "title"}))
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectClose()

	deps := testDeps(func(_ context.Context, cfg *config.Config) (*app.App, error) {
		return app.New(cfg, sqlx.NewDb(db, "mysql"), handler.NewRegistry()), nil
	})
	out := run(t, deps, "rebuild")
	if !strings.Contains(out, "0 route(s)") {
		t.Fatalf("output = %s", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
