package dbroute

import (
	"strconv"
	"strings"
)

// slugPlaceholder is substituted literally; templates are not validated.
const slugPlaceholder = "{slug}"

// ResolvePath returns the concrete path for slug in locale.  A template
// declared for the locale has every "{slug}" replaced; otherwise the path is
// "/" + slug.
func ResolvePath(slug, locale string, d Descriptor) string {
	if tpl, ok := d.PathTemplates[locale]; ok {
		return strings.ReplaceAll(tpl, slugPlaceholder, slug)
	}
	return "/" + slug
}

// ResolveCanonicalName returns the stable route name for an entity code.
func ResolveCanonicalName(code string, d Descriptor) string {
	return d.NamePrefix + code
}

// EntityCode returns the entity's path code, falling back to its id.
func EntityCode(e Entity) string {
	if id, ok := e.(Identable); ok {
		if code := id.Ident(); code != "" {
			return code
		}
	}
	return strconv.FormatInt(e.EntityID(), 10)
}
