package dbroute

import (
	"sort"
	"strings"
)

// HandlerRef identifies the controller method serving a route.
type HandlerRef struct {
	Controller string
	Method     string
}

// String serializes the reference as "Controller::Method", the form stored
// in routes.controller.
func (h HandlerRef) String() string { return h.Controller + "::" + h.Method }

// MarshalText renders the reference in its "Controller::Method" form.
func (h HandlerRef) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// ParseHandlerRef is the inverse of HandlerRef.String.
func ParseHandlerRef(s string) (HandlerRef, bool) {
	ctrl, method, ok := strings.Cut(s, "::")
	if !ok || ctrl == "" || method == "" {
		return HandlerRef{}, false
	}
	return HandlerRef{Controller: ctrl, Method: method}, true
}

// Descriptor is one discovered entity route.  NamePrefix already includes
// the controller's class-level fragment.
type Descriptor struct {
	EntityType    string
	NamePrefix    string
	PathTemplates map[string]string
	Handler       HandlerRef
}

// Discovered maps an entity type to its descriptors in discovery order.
type Discovered map[string][]Descriptor

// For returns the descriptors bound to entityType, or nil.
func (d Discovered) For(entityType string) []Descriptor { return d[entityType] }

// Types returns the discovered entity types, sorted.
func (d Discovered) Types() []string {
	out := make([]string, 0, len(d))
	for t := range d {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
