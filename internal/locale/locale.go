// internal/locale/locale.go
//
// Enabled-locale metadata for switchers and operator tooling.
//
// Context
// -------
// Each enabled locale code is described by its name written in that
// language ("čeština", "English") and the CSS class of its flag icon.  The
// flag country defaults to the locale code, with overrides for languages
// whose code differs from the country they are usually shown with.
//
// Notes
// -----
// • Codes that do not parse as BCP 47 tags keep the raw code as the name.
// • Oxford commas, two spaces after periods.

package locale

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default enabled locales when configuration leaves the list empty.
var Default = []string{"cs", "en"}

var flagCountry = map[string]string{
	"en": "gb",
	"cs": "cz",
}

// Info describes one enabled locale.
type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Locales returns Info for every code in enabled, in order.  Duplicate and
// blank codes are skipped.
func Locales(enabled []string) []Info {
	if len(enabled) == 0 {
		enabled = Default
	}

	seen := map[string]bool{}
	out := make([]Info, 0, len(enabled))
	for _, code := range enabled {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, Info{Code: code, Name: Name(code), Flag: Flag(code)})
	}
	return out
}

// Name returns the self-name of code.
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if n := display.Self.Name(tag); n != "" {
		return n
	}
	return code
}

// Flag returns the flag icon class for code.
func Flag(code string) string {
	cc, ok := flagCountry[code]
	if !ok {
		cc = strings.ToLower(code)
	}
	return "fi fi-" + cc
}
