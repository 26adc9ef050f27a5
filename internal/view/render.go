// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Register       – a component hands over its embedded templates.
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (fragments for XHR and ws).
//
// Lookup precedence (first hit wins):
//  1. <override>/components/<comp>/templates/<tpl>.html  (SetOverrideRoot)
//  2. the component's embedded templates/<tpl>.html
//
// All templates in the chosen directory are parsed as one set together
// with the shared layout partials in internal/view/templates, so
// sub-templates ({{ template "dialogs" . }}) work out-of-the-box.
//
// execName() chooses the template to execute:
//   – If the set contains "<name>.html", we run that (file has no define).
//   – Else we fall back to "<name>" (root template defined via {{ define }}).
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yanizio/cadastro/internal/cache"
)

//go:embed templates/*.html
var shared embed.FS

//
// cache definitions
//

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // keep parsed set in the LRU
	CacheSkip                       // never cache (template development)
)

// Parsed template sets per component; tweak capacity when perf-testing.
var tmplLRU = cache.New[string, *template.Template](64)

var (
	regMu    sync.RWMutex
	registry = map[string]fs.FS{} // comp → FS rooted at its templates dir

	overrideRoot atomic.Pointer[string]
)

// Register makes fsys (rooted at the component's templates directory) the
// embedded template source for comp.
func Register(comp string, fsys fs.FS) {
	regMu.Lock()
	registry[comp] = fsys
	regMu.Unlock()
	tmplLRU.Purge()
}

// SetOverrideRoot enables on-disk template overrides below root.
func SetOverrideRoot(root string) {
	overrideRoot.Store(&root)
	tmplLRU.Purge()
}

//
// public helpers
//

// Render executes the template set and streams it to w.
func Render(w http.ResponseWriter, comp, name string, data any, policy CachePolicy) error {
	t, err := load(comp, name, policy)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return err
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderToString executes and returns HTML.  It mirrors Render, but writes
// to a buffer instead of w.
func RenderToString(comp, name string, data any) (template.HTML, error) {
	t, err := load(comp, name, CacheDefault)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: load
//

// load finds and (if necessary) parses the template set for the given
// component and base name, obeying the provided cache policy.
func load(comp, name string, policy CachePolicy) (*template.Template, error) {
	key := comp + "::" + name

	if policy != CacheSkip {
		if t, ok := tmplLRU.Get(key); ok {
			return t, nil
		}
	}

	fsys, err := source(comp, name)
	if err != nil {
		return nil, err
	}

	t, err := template.New(name).Funcs(funcMap()).ParseFS(shared, "templates/*.html")
	if err != nil {
		return nil, err
	}
	// Parse all *.html in the same directory so sub-templates work.
	if t, err = t.ParseFS(fsys, "*.html"); err != nil {
		return nil, err
	}

	if policy != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

// source picks the first FS that holds name+".html".
func source(comp, name string) (fs.FS, error) {
	file := name + ".html"

	if p := overrideRoot.Load(); p != nil && *p != "" {
		dir := filepath.Join(*p, "components", comp, "templates")
		if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
			return os.DirFS(dir), nil
		}
	}

	regMu.RLock()
	fsys, ok := registry[comp]
	regMu.RUnlock()
	if ok {
		if _, err := fs.Stat(fsys, file); err == nil {
			return fsys, nil
		}
	}
	return nil, fmt.Errorf("view: template %s/%s: %w", comp, file, os.ErrNotExist)
}

//
// func-map builders
//

func funcMap() template.FuncMap {
	fm := template.FuncMap{
		"dict":  dict,
		"lower": strings.ToLower,
	}
	for k, v := range uaFuncMap() {
		fm[k] = v
	}
	return fm
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
