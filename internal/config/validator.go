// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree and applies defaults.  Any tag mismatch
// or validation error aborts startup.
//
// Beyond the struct tags, one cross-field rule is enforced here: the
// default locale must be one of the enabled locales.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	if !slices.Contains(c.Routing.EnabledLocales, c.Routing.DefaultLocale) {
		return fmt.Errorf("routing.default_locale %q is not in routing.enabled_locales %v",
			c.Routing.DefaultLocale, c.Routing.EnabledLocales)
	}
	return nil
}
