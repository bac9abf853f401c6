// Package dbroute keeps the persisted `routes` table in step with the
// entities that should be reachable at slug-based, localized URLs.
//
// Context
// -------
// Handler methods declare entity routes (see internal/handler).  Discovery
// groups those declarations by entity type; the Synchronizer upserts one
// Record per entity, descriptor, and locale whenever an entity changes, and
// stages deletes when one is removed; the Loader rebuilds every record in
// bulk and returns the route Table the HTTP dispatcher mounts.
//
// Both paths share the same slug resolution and upsert logic, so running a
// full rebuild after any sequence of incremental updates converges on the
// same record set.
//
// Notes
// -----
// • Natural key: (entity_class, entity_id, locale, canonical_route).
// • Records are never removed because a slug became empty; only entity
//   removal deletes them.
// • Oxford commas, two spaces after periods.
package dbroute
