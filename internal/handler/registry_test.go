// internal/handler/registry_test.go
//
// Unit-tests for the controller registry.
//
// Run: go test ./internal/handler -v

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubController struct {
	name    string
	methods []Method
}

func (s *stubController) Name() string      { return s.name }
func (s *stubController) Prefix() string    { return "" }
func (s *stubController) Methods() []Method { return s.methods }

func TestRegistry_AllSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubController{name: "z.Blog"})
	r.Register(&stubController{name: "a.Catalog"})
	r.Register(&stubController{name: "m.Pages"})

	got := r.All()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"a.Catalog", "m.Pages", "z.Blog"}
	for i, c := range got {
		if c.Name() != want[i] {
			t.Fatalf("All()[%d] = %q, want %q", i, c.Name(), want[i])
		}
	}
}

func TestRegistry_RegisterReplacesSameName(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubController{name: "a.Catalog"})
	r.Register(&stubController{name: "a.Catalog", methods: []Method{{Name: "Show"}}})

	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
	if n := len(r.All()[0].Methods()); n != 1 {
		t.Fatalf("methods = %d, want replacement with 1", n)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubController{
		name: "a.Catalog",
		methods: []Method{{
			Name: "Show",
			Handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			},
		}},
	})

	h := r.Lookup("a.Catalog", "Show")
	if h == nil {
		t.Fatalf("Lookup returned nil for registered method")
	}
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rr.Code)
	}

	if r.Lookup("a.Catalog", "Missing") != nil {
		t.Fatalf("Lookup of unknown method should be nil")
	}
	if r.Lookup("b.Unknown", "Show") != nil {
		t.Fatalf("Lookup of unknown controller should be nil")
	}
}
