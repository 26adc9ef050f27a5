// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web runs every
// component's Migrations() for the configured driver, calls Init() with the
// shared resources, and mounts Routes() at “/”.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is optional in spirit; components with no boot work return
// nil.  cmd/web calls Init(env) once before mounting routes.
type Initializer interface {
	Init(Env) error
}

// Component contract.
//
// Migrations(driver) may return nil if the component has no schema.
// Routes() should mount BOTH page and API endpoints, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/", getPage)
//	r.Route("/api", func(api chi.Router) { ... })
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
	Migrations(driver string) []string
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  Registering the
// same name twice panics.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[c.Name()]; dup {
		panic(fmt.Sprintf("component: %q registered twice", c.Name()))
	}
	registry[c.Name()] = c
}

// All returns every registered component sorted by name, so migrations
// and route mounting run in a stable order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Lookup returns the component registered under name, or nil.
func Lookup(name string) Component {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}
