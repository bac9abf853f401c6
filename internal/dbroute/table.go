package dbroute

import "regexp"

// Params are the defaults a dispatcher hands to the serving handler.
type Params struct {
	Slug      string `json:"slug"`
	Locale    string `json:"locale"`
	Canonical string `json:"canonical"`
}

// Entry is one route-table entry.  Constraints["slug"] is an exact-match
// pattern for the entry's own slug, never a general slug wildcard.
type Entry struct {
	Key         string            `json:"key"`
	Path        string            `json:"path"`
	Handler     HandlerRef        `json:"handler"`
	Params      Params            `json:"params"`
	Constraints map[string]string `json:"constraints"`
}

// NewEntry builds the entry for one resolved (canonical, locale, slug).
func NewEntry(canonical, locale, slug, path string, h HandlerRef) Entry {
	return Entry{
		Key:     canonical + "." + locale,
		Path:    path,
		Handler: h,
		Params: Params{
			Slug:      slug,
			Locale:    locale,
			Canonical: canonical,
		},
		Constraints: map[string]string{"slug": regexp.QuoteMeta(slug)},
	}
}

// Table is the ordered route table produced by a bulk load.  Adding an
// entry whose key already exists replaces it in place.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: map[string]int{}}
}

// Add inserts or replaces e.
func (t *Table) Add(e Entry) {
	if i, ok := t.index[e.Key]; ok {
		t.entries[i] = e
		return
	}
	t.index[e.Key] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Get returns the entry stored under key.
func (t *Table) Get(key string) (Entry, bool) {
	i, ok := t.index[key]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entries returns a copy of the entries in insertion order.
func (t *Table) Entries() []Entry { return append([]Entry(nil), t.entries...) }

// Len reports the number of entries.
func (t *Table) Len() int { return len(t.entries) }
