// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `CADASTRO_`, where `__` maps to “.”
     (e.g., `CADASTRO_HTTP__LISTEN_ADDR → http.listen_addr`).

String values of the form `vault:<mount>/<path>#<key>` are then resolved
through the supplied SecretFunc.  After that the tree is unmarshalled into
strongly-typed structs, validated, enriched with the runtime root path,
and cached in an `atomic.Pointer` for lock-free reads.  `Reload()` calls
`Load()` again with the last resolver and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay, vault refs.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix   = "CADASTRO_"
	vaultPrefix = "vault:"
)

// SecretFunc resolves one key of a Vault KV-v2 secret.
type SecretFunc func(ctx context.Context, path, key string) (string, error)

var (
	current      atomic.Pointer[Config]
	lastResolver atomic.Pointer[SecretFunc]
)

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves CADASTRO_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

// Root returns the directory Load would read from.
func Root() string { return rootDir() }

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves vault references,
// validates, and caches Config.  resolve may be nil when no value in the
// tree uses the `vault:` prefix.
func Load(ctx context.Context, resolve SecretFunc) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: CADASTRO_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, resolve); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	if resolve != nil {
		lastResolver.Store(&resolve)
	}
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"driver", cfg.Database.Driver,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets replaces every `vault:` string in k with its secret.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, resolve SecretFunc) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		if resolve == nil {
			return fmt.Errorf("%s: %w", key, ErrVaultUnavailable)
		}
		path, field, err := ParseVaultRef(s)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		zap.S().Debugw("config vault ref", "key", key, "path", path, "field", field)
		secret, err := resolve(ctx, path, field)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return err
		}
	}
	return nil
}

// ParseVaultRef splits "vault:<mount>/<path>#<key>" into path and key.
func ParseVaultRef(ref string) (path, key string, err error) {
	rest, ok := strings.CutPrefix(ref, vaultPrefix)
	if !ok {
		return "", "", fmt.Errorf("not a vault reference: %q", ref)
	}
	path, key, ok = strings.Cut(rest, "#")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", "", fmt.Errorf("malformed vault reference %q, want vault:<mount>/<path>#<key>", ref)
	}
	return path, key, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the Config cached by the last successful Load, or nil
// before the first one.
func Get() *Config { return current.Load() }

// Reload re-reads every layer with the resolver used by the last Load.  On
// error the cached Config is left as it was.  cmd/web calls it on SIGHUP.
func Reload(ctx context.Context) error {
	var resolve SecretFunc
	if p := lastResolver.Load(); p != nil {
		resolve = *p
	}
	_, err := Load(ctx, resolve)
	return err
}
