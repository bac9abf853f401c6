// internal/dbroute/record.go
//
// `routes` table row model.
//
// Schema reference
//
//	CREATE TABLE routes (
//	    id              INT UNSIGNED  PRIMARY KEY AUTO_INCREMENT,
//	    canonical_route VARCHAR(255)  NOT NULL,
//	    controller      VARCHAR(255)  NOT NULL,
//	    entity_id       INT           NULL,
//	    entity_class    VARCHAR(255)  NULL,
//	    locale          VARCHAR(16)   NOT NULL,
//	    slug            VARCHAR(255)  NOT NULL,
//	    created         DATETIME      NOT NULL,
//	    UNIQUE KEY ux_routes_natural (entity_class, entity_id, locale, canonical_route)
//	);
//
// Notes
// -----
// • `slug` holds the full resolved path ("/en/products/widget"), not the bare
//   slug.  The column name is historical.
// • Nullable columns are pointers; entity-bound records always set both.
// • `Created` is set once when the record is first staged.

package dbroute

import "time"

// Record mirrors one row in the `routes` table.
type Record struct {
	ID             int64     `db:"id"`
	CanonicalRoute string    `db:"canonical_route"`
	Controller     string    `db:"controller"`
	EntityID       *int64    `db:"entity_id"`
	EntityClass    *string   `db:"entity_class"`
	Locale         string    `db:"locale"`
	Slug           string    `db:"slug"`
	Created        time.Time `db:"created"`
}

// Key is the natural key of an entity-bound Record.
type Key struct {
	EntityClass    string
	EntityID       int64
	Locale         string
	CanonicalRoute string
}

// Key returns r's natural key.  Nil entity columns map to zero values.
func (r *Record) Key() Key {
	k := Key{Locale: r.Locale, CanonicalRoute: r.CanonicalRoute}
	if r.EntityClass != nil {
		k.EntityClass = *r.EntityClass
	}
	if r.EntityID != nil {
		k.EntityID = *r.EntityID
	}
	return k
}

// newRecord returns an unsaved Record initialised from k.
func newRecord(k Key, now time.Time) *Record {
	class, id := k.EntityClass, k.EntityID
	return &Record{
		CanonicalRoute: k.CanonicalRoute,
		EntityClass:    &class,
		EntityID:       &id,
		Locale:         k.Locale,
		Created:        now,
	}
}

// mutable is the subset of columns an upsert overwrites.
type mutable struct {
	canonical  string
	controller string
	locale     string
	slug       string
}

func (r *Record) mutable() mutable {
	return mutable{
		canonical:  r.CanonicalRoute,
		controller: r.Controller,
		locale:     r.Locale,
		slug:       r.Slug,
	}
}

// Migrations returns the DDL for the routes table.
func Migrations() []string {
	return []string{`
	    CREATE TABLE IF NOT EXISTS routes (
	        id              INT UNSIGNED  NOT NULL AUTO_INCREMENT PRIMARY KEY,
	        canonical_route VARCHAR(255)  NOT NULL,
	        controller      VARCHAR(255)  NOT NULL,
	        entity_id       INT           NULL,
	        entity_class    VARCHAR(255)  NULL,
	        locale          VARCHAR(16)   NOT NULL,
	        slug            VARCHAR(255)  NOT NULL,
	        created         DATETIME      NOT NULL,
	        UNIQUE KEY ux_routes_natural (entity_class, entity_id, locale, canonical_route),
	        KEY ix_routes_slug (slug)
	    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
}
