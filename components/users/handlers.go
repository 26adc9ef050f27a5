// components/users/handlers.go
//
// HTTP handlers.  Every handler that changes form state verifies the CSRF
// token bound to the session id, checks the per-session rate limiter, and
// runs the event through Entry.Do so events for one form never interleave.
//
//------------------------------------------------------------------------------

package users

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/form"
	"github.com/yanizio/cadastro/internal/head"
	"github.com/yanizio/cadastro/internal/message"
	"github.com/yanizio/cadastro/internal/metrics"
	"github.com/yanizio/cadastro/internal/requestinfo"
	"github.com/yanizio/cadastro/internal/session"
	"github.com/yanizio/cadastro/internal/user"
	"github.com/yanizio/cadastro/internal/view"
)

// csrfHeader carries the token on XHR requests.
const csrfHeader = "X-CSRF-Token"

// redirectHeader tells the page script to navigate after an event.
const redirectHeader = "X-Redirect"

// pageData feeds templates/page.html and templates/fragment.html.
type pageData struct {
	Head      *head.Builder
	Info      *requestinfo.RequestInfo
	Heading   string
	SessionID string
	CSRFToken string
	Form      template.HTML
	Dialogs   []message.Dialog
}

/*──────────────────────────── pages ───────────────────────────────────────*/

func (c *Component) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	// A create form that still holds dialogs (the outcome of a delete
	// redirect, named by ?sid= or the cookie) is shown once more; anything
	// else gets a fresh mount.
	id, ok := session.CookieID(r)
	if q := r.URL.Query().Get("sid"); session.ValidID(q) {
		id, ok = q, true
	}
	if ok {
		if e, err := c.store.Get(id); err == nil && !e.State().Editing && e.Dialogs.Len() > 0 {
			c.renderPage(w, r, e)
			return
		}
	}
	e := c.store.Mount(c.host, c.formOpts...)
	c.renderPage(w, r, e)
}

func (c *Component) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	e, err := c.store.MountEdit(r.Context(), id, c.load, c.host, c.formOpts...)
	if errors.Is(err, user.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		zap.S().Errorw("edit form load failed", "id", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.renderPage(w, r, e)
}

// load seeds the edit form from the repository.
func (c *Component) load(ctx context.Context, id int64) (map[string]string, error) {
	rec, err := c.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.InitialData(c.def.Field(form.Phone).Mask, c.def.Field(form.NationalID).Mask), nil
}

/*──────────────────────────── events ──────────────────────────────────────*/

func (c *Component) handleEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := c.entry(w, r)
	if !ok {
		return
	}
	ev := wireEvent{
		Type:  r.PostFormValue("type"),
		Field: r.PostFormValue("field"),
		Value: r.PostFormValue("value"),
	}

	if err := c.dispatch(r, e, ev); err != nil {
		c.eventError(w, e, err)
		return
	}
	if e.Finished() {
		c.finish(w, r, e)
		w.Header().Set(redirectHeader, "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	frag, err := c.fragment(e)
	if err != nil {
		zap.S().Errorw("fragment render failed", "session", e.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(frag))
}

// handleSubmit is the no-JS path: apply every posted value, then submit.
func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := c.entry(w, r)
	if !ok {
		return
	}

	err := e.Do(func(m *form.Machine) error {
		for _, f := range form.Fields {
			if vals, posted := r.PostForm[f.String()]; posted && len(vals) > 0 {
				if err := m.Dispatch(form.ValueChanged{Field: f, Value: c.mask(f, vals[0])}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		err = c.dispatch(r, e, wireEvent{Type: evSubmit})
	}
	if err != nil {
		c.eventError(w, e, err)
		return
	}
	c.renderPage(w, r, e)
}

func (c *Component) handleDelete(w http.ResponseWriter, r *http.Request) {
	e, ok := c.entry(w, r)
	if !ok {
		return
	}
	if err := c.dispatch(r, e, wireEvent{Type: evDelete}); err != nil {
		c.eventError(w, e, err)
		return
	}
	if e.Finished() {
		c.finish(w, r, e)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	// The delete failed; the dialog explains why.
	c.renderPage(w, r, e)
}

/*──────────────────────────── snapshot ────────────────────────────────────*/

// snapshot is the JSON view of a form.  Password values are redacted.
type snapshot struct {
	Session string            `json:"session"`
	Editing bool              `json:"editing"`
	Values  map[string]string `json:"values"`
	Invalid map[string]bool   `json:"invalid"`
	Touched map[string]bool   `json:"touched"`
	Errors  map[string]string `json:"errors"`
}

const redacted = "********"

func newSnapshot(id string, s form.State) snapshot {
	out := snapshot{
		Session: id,
		Editing: s.Editing,
		Values:  s.Values.Map(),
		Invalid: make(map[string]bool, len(form.Fields)),
		Touched: make(map[string]bool, len(form.Fields)),
		Errors:  make(map[string]string),
	}
	for _, f := range form.Fields {
		out.Invalid[f.String()] = s.Invalid[f]
		out.Touched[f.String()] = s.Touched[f]
	}
	for f, msg := range s.Errors() {
		out.Errors[f.String()] = msg
	}
	for _, f := range []form.Field{form.Password, form.ConfirmPassword} {
		if out.Values[f.String()] != "" {
			out.Values[f.String()] = redacted
		}
	}
	return out
}

func (c *Component) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	e, err := c.store.Get(sid)
	if err != nil {
		http.Error(w, "form session not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(newSnapshot(e.ID, e.State()))
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// entry resolves {sid}, parses the body, and checks CSRF and rate.  On
// failure it has already written the response.
func (c *Component) entry(w http.ResponseWriter, r *http.Request) (*session.Entry, bool) {
	sid := chi.URLParam(r, "sid")
	e, err := c.store.Get(sid)
	if err != nil {
		session.ClearCookie(w, r)
		http.Error(w, "form session expired, reload the page", http.StatusNotFound)
		return nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil, false
	}

	tok := r.Header.Get(csrfHeader)
	if tok == "" {
		tok = r.PostFormValue("csrf_token")
	}
	if !c.signer.Verify(tok, e.ID) {
		zap.S().Warnw("csrf token rejected", "session", e.ID, "path", r.URL.Path)
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return nil, false
	}

	if !e.Allow() {
		http.Error(w, session.ErrRateLimited.Error(), http.StatusTooManyRequests)
		return nil, false
	}
	return e, true
}

// dispatch runs ev under the entry lock and records metrics and a log
// line for submit attempts.
func (c *Component) dispatch(r *http.Request, e *session.Entry, ev wireEvent) error {
	err := e.Do(func(m *form.Machine) error { return c.apply(m, ev) })
	if err != nil {
		return err
	}
	metrics.FormEventsTotal.WithLabelValues(ev.Type).Inc()
	if ev.Type == evSubmit || ev.Type == evDelete {
		fields := append([]any{"session", e.ID, "record", e.RecordID, "type", ev.Type},
			requestinfo.FromContext(r.Context()).LogFields()...)
		zap.S().Infow("form action", fields...)
	}
	return nil
}

func (c *Component) eventError(w http.ResponseWriter, e *session.Entry, err error) {
	if clientError(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	zap.S().Errorw("form event failed", "session", e.ID, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// finish drops a deleted form and points the cookie at its successor.
func (c *Component) finish(w http.ResponseWriter, r *http.Request, e *session.Entry) {
	next := c.handOver(e)
	session.SetCookie(w, r, next.ID, 0)
}

// handOver removes e and mounts a fresh create-mode form holding e's
// pending dialogs, so the redirect target can show them.
func (c *Component) handOver(e *session.Entry) *session.Entry {
	c.store.Remove(e.ID)
	next := c.store.Mount(c.host, c.formOpts...)
	for _, d := range e.Dialogs.Drain() {
		next.Dialogs.Push(d)
	}
	return next
}

// formData renders the form markup and drains the pending dialogs.
func (c *Component) formData(e *session.Entry) (pageData, error) {
	tok, err := c.signer.Generate(e.ID)
	if err != nil {
		return pageData{}, err
	}
	html, err := form.Render(e.State(), c.def, form.RenderOptions{SessionID: e.ID, CSRFToken: tok})
	if err != nil {
		return pageData{}, err
	}
	return pageData{
		SessionID: e.ID,
		CSRFToken: tok,
		Form:      html,
		Dialogs:   e.Dialogs.Drain(),
	}, nil
}

func (c *Component) fragment(e *session.Entry) (template.HTML, error) {
	data, err := c.formData(e)
	if err != nil {
		return "", err
	}
	return view.RenderToString(Name, "fragment", data)
}

func (c *Component) renderPage(w http.ResponseWriter, r *http.Request, e *session.Entry) {
	data, err := c.formData(e)
	if err != nil {
		zap.S().Errorw("form render failed", "session", e.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data.Heading = c.def.Title
	if data.Heading == "" {
		data.Heading = "Cadastro"
	}
	h := head.New()
	h.SetTitle(data.Heading)
	h.Meta("viewport", "width=device-width, initial-scale=1")
	h.Stylesheet("/static/cadastro.css")
	h.Script("/static/cadastro.js")
	data.Head = h
	data.Info = requestinfo.FromContext(r.Context())

	session.SetCookie(w, r, e.ID, 0)
	w.Header().Set("Cache-Control", "no-store")
	if err := view.Render(w, Name, "page", data, view.CacheDefault); err != nil {
		zap.S().Errorw("page render failed", "session", e.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
