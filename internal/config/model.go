// internal/config/model.go
//
// Typed configuration model for Relay.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `RELAY_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Dispatch section
//

// Dispatch tunes the per-request execution context.
//
// RecursionLimit caps the execution-stack depth; an execute that would
// exceed it is refused with a recorded error instead of a crash.  Zero
// means "use the default" (1000).  Profiling switches per-action timing
// collection on; when false the hot path performs a single nil check.
type Dispatch struct {
	RecursionLimit int  `koanf:"recursion_limit" validate:"gte=0"`
	Profiling      bool `koanf:"profiling"`
}

// DefaultRecursionLimit applies when dispatch.recursion_limit is unset.
const DefaultRecursionLimit = 1000

//
// I18N section
//

// I18N configures the translation store.  DSN is optional; when empty the
// store runs catalog-less and Translate falls back to source text.
type I18N struct {
	DefaultLocale string `koanf:"default_locale"`
	DSN           string `koanf:"dsn"`
}

//
// Geo section
//

// Geo points at an optional MaxMind GeoLite2-City database.  When the path
// is empty request info carries no geolocation hints.
type Geo struct {
	CityDB string `koanf:"city_db"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or RELAY_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // RELAY_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Dispatch Dispatch `koanf:"dispatch"`
	I18N     I18N     `koanf:"i18n"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files

	raw map[string]any // flattened koanf tree for Context.Config lookups
}

// RecursionLimit returns the configured limit or the default.
func (c *Config) RecursionLimit() int {
	if c.Dispatch.RecursionLimit > 0 {
		return c.Dispatch.RecursionLimit
	}
	return DefaultRecursionLimit
}

// Raw exposes the merged configuration tree as dotted keys
// ("http.listen_addr" → ":8080").  Read-only by convention.
func (c *Config) Raw() map[string]any { return c.raw }
