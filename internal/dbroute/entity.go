package dbroute

import "context"

// Entity is the minimum a routable record exposes.  EntityType is the
// identifier descriptors bind to and the value stored in
// routes.entity_class.
type Entity interface {
	EntityType() string
	EntityID() int64
}

// Identable entities supply the code appended to the route-name prefix.
// Entities without it use their id.
type Identable interface {
	Ident() string
}

// Sluggable entities (and translations) expose a URL slug.
type Sluggable interface {
	Slug() string
}

// Localizable entities carry their own locale.
type Localizable interface {
	Locale() string
}

// Translation is one per-locale element of a Translatable entity.  It may
// also implement Sluggable; when it doesn't, the owner's slug is used.
type Translation interface {
	Locale() string
}

// Translatable entities own a collection of translations.
type Translatable interface {
	Translations() []Translation
}

// TranslationRecord is a translation that is persisted on its own and so
// raises its own lifecycle events.  Changes to it are synchronized through
// its owner.
type TranslationRecord interface {
	Entity
	Owner() Entity
}

// ChangeKind tells the synchronizer which lifecycle event fired.
type ChangeKind int

const (
	Created ChangeKind = iota + 1
	Updated
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// EntitySource enumerates the whole population of one entity type for the
// bulk loader.
type EntitySource interface {
	FindAll(ctx context.Context, entityType string) ([]Entity, error)
}

// localized is one (locale, slug) pair produced for an entity.
type localized struct {
	locale string
	slug   string
}

// localizedSlugs returns every (locale, slug) pair e should be routed at.
// Translatable entities fan out over their translations; a translation
// without its own slug accessor borrows the owner's.  Non-translatable
// entities use their own slug and locale, or defaultLocale when they carry
// none.  Empty slugs are skipped.
func localizedSlugs(e Entity, defaultLocale string) []localized {
	if t, ok := e.(Translatable); ok {
		var out []localized
		for _, tr := range t.Translations() {
			if tr == nil {
				continue
			}
			var slug string
			if s, ok := tr.(Sluggable); ok {
				slug = s.Slug()
			} else if s, ok := e.(Sluggable); ok {
				slug = s.Slug()
			}
			if slug == "" {
				continue
			}
			out = append(out, localized{locale: tr.Locale(), slug: slug})
		}
		return out
	}

	s, ok := e.(Sluggable)
	if !ok {
		return nil
	}
	slug := s.Slug()
	if slug == "" {
		return nil
	}
	locale := defaultLocale
	if l, ok := e.(Localizable); ok {
		locale = l.Locale()
	}
	return []localized{{locale: locale, slug: slug}}
}
