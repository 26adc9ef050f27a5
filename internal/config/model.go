// internal/config/model.go
//
// Typed configuration model for Cadastro.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                       – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `CADASTRO_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations are written as Go duration strings ("15s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"fmt"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.  Zero timeouts fall back to the
// defaults in internal/server.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Database section
//

// Database holds the driver, the DSN template, and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault.  When it contains a single `%s` verb the
// *secret* portion (`Password`, usually a `vault:` reference) is injected
// there at runtime, keeping credentials out of flat files and git history.
type Database struct {
	Driver   string `koanf:"driver"   validate:"required,oneof=mysql sqlite"`
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

// ConnString returns the DSN with Password substituted.
func (d Database) ConnString() string {
	if strings.Count(d.DSN, "%s") == 1 {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// Form section
//

// Form tunes the registration form.
type Form struct {
	Definition string `koanf:"definition"` // YAML path; empty = embedded default
	CSRFKey    string `koanf:"csrf_key"`   // base64url, ≥ 32 bytes
	BcryptCost int    `koanf:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
}

//
// Session section
//

// Session tunes the in-memory form store.
type Session struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"       validate:"gte=0"`
	MaxEntries    int           `koanf:"max_entries"    validate:"gte=0"`
	EvictInterval time.Duration `koanf:"evict_interval"`
	EventRate     float64       `koanf:"event_rate"     validate:"gte=0"`
	EventBurst    int           `koanf:"event_burst"    validate:"gte=0"`
}

//
// Request info section
//

// RequestInfo points at optional lookup data.
type RequestInfo struct {
	GeoIPDB string `koanf:"geoip_db"` // GeoLite2-City.mmdb; empty disables geo
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or CADASTRO_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // CADASTRO_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP        HTTP        `koanf:"http"`
	Database    Database    `koanf:"database"`
	Form        Form        `koanf:"form"`
	Session     Session     `koanf:"session"`
	RequestInfo RequestInfo `koanf:"requestinfo"`
	Paths       Paths       `koanf:"-"` // not loaded from config files
}
