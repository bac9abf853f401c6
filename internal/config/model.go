// internal/config/model.go
//
// Typed configuration model for the route service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • optional `conf/global.yaml`               – primary static file,
//   • `DBROUTE_`-prefixed environment overrides – highest precedence.
//
// Unset tunables receive the defaults in applyDefaults() before validation,
// so the app fails fast only on values it cannot invent (the DSN).
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax ("15s"); lists accept "cs,en" from env.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// DSN may contain one `%s` verb where Password is injected.  Password is
// either a literal or a Vault reference of the form `vault:<path>#<key>`,
// resolved by ResolveDSN at bootstrap.
type Database struct {
	DSN         string        `koanf:"dsn"          validate:"required"`
	Password    string        `koanf:"password"`
	MaxOpen     int           `koanf:"max_open"     validate:"gte=1"`
	MaxIdle     int           `koanf:"max_idle"     validate:"gte=0"`
	MaxLifetime time.Duration `koanf:"max_lifetime" validate:"gte=0"`
	PingRetries int           `koanf:"ping_retries" validate:"gte=0"`
}

//
// Routing section
//

// Routing holds route-table tunables.
type Routing struct {
	EnabledLocales []string `koanf:"enabled_locales" validate:"min=1,dive,bcp47_language_tag"`
	DefaultLocale  string   `koanf:"default_locale"  validate:"required,bcp47_language_tag"`
	CacheNamespace string   `koanf:"cache_namespace" validate:"required"`
	CacheCapacity  int      `koanf:"cache_capacity"  validate:"gte=1"`
}

//
// Log section
//

// Log controls the logger sinks.
type Log struct {
	Tee   bool   `koanf:"tee"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // DBROUTE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Routing  Routing  `koanf:"routing"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}

// applyDefaults fills every unset tunable.
func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}

	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Database.MaxLifetime == 0 {
		c.Database.MaxLifetime = 30 * time.Minute
	}
	if c.Database.PingRetries == 0 {
		c.Database.PingRetries = 3
	}

	if len(c.Routing.EnabledLocales) == 0 {
		c.Routing.EnabledLocales = []string{"cs", "en"}
	}
	if c.Routing.DefaultLocale == "" {
		c.Routing.DefaultLocale = "cs"
	}
	if c.Routing.CacheNamespace == "" {
		c.Routing.CacheNamespace = "routing"
	}
	if c.Routing.CacheCapacity == 0 {
		c.Routing.CacheCapacity = 64
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
