// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page’s
// <head> element.  It is scoped to a single render call.  The users
// component pushes the title, the stylesheet, and the form script, then
// the layout template emits each slice in place.
//
// Features
// --------
//   - SetTitle            – single <title> tag (last call wins).
//   - Meta, Stylesheet,
//     Script              – tags built from attribute values, deduplicated.
//   - Render helpers      – concat methods that return template.HTML.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is guarded by a mutex, although typical use is one goroutine
// per request.
type Builder struct {
	mu sync.Mutex

	title string

	metas   []string
	links   []string
	scripts []string

	// seen tracks keys for deduplication.
	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helper
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

// Meta adds <meta name="…" content="…">.
func (b *Builder) Meta(name, content string) {
	b.add("meta:"+name, &b.metas,
		`<meta name="`+esc(name)+`" content="`+esc(content)+`">`)
}

// Stylesheet adds <link rel="stylesheet" href="…">.
func (b *Builder) Stylesheet(href string) {
	b.add("link:"+href, &b.links, `<link rel="stylesheet" href="`+esc(href)+`">`)
}

// Script adds a deferred external <script src="…">.
func (b *Builder) Script(src string) {
	b.add("script:"+src, &b.scripts, `<script defer src="`+esc(src)+`"></script>`)
}

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from the layout
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML   { return b.concat(b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(b.scripts) }

// concat joins pre-escaped tags without a separator.
func (b *Builder) concat(sl []string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(sl, ""))
}

func esc(s string) string { return template.HTMLEscapeString(s) }
