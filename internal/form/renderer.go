// internal/form/renderer.go
//
// Cadastro – Forms subsystem: HTML renderer.
//
// Context
//   Given a State and its Definition this file converts the form into plain
//   HTML.  The server owns the state, so every render reflects the latest
//   values, the visible errors, and the password visibility toggles.
//
// Workflow
//   •  Render writes one field block per Definition entry via writeField.
//   •  Each input carries data-field (and data-mask when masked) so the small
//      client script can post value, blur, and click events back.
//   •  The inline error span is filled only when State.ShowError is true.
//   •  The password field gets the visibility toggle and the generator
//      button; the confirmation field gets its own toggle.
//   •  Submit is captioned by mode; Delete exists only in edit mode.
//   •  A CSRF token bound to the form session is embedded as a hidden input.
//
// Style
//   Output HTML is deliberately plain so the page stylesheet can target
//   element selectors or class hooks.  Each input gets id="fld-{name}" and
//   is wrapped in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
)

// RenderOptions bundles request-scoped parameters for the markup.
type RenderOptions struct {
	// SessionID identifies the form mount in event URLs.
	SessionID string
	// CSRFToken is embedded as a hidden input.  Empty omits it.
	CSRFToken string
}

// Render returns the HTML markup for s.
func Render(s State, def *Definition, opts RenderOptions) (template.HTML, error) {
	if def == nil {
		return "", fmt.Errorf("Render: nil definition")
	}

	sid := html.EscapeString(opts.SessionID)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<form class="cadastro-form" id="form-%s" method="post" action="/form/%s/submit" data-session="%s" novalidate>`+"\n",
		sid, sid, sid)

	for i := range def.Fields {
		if err := writeField(&buf, s, def, &def.Fields[i]); err != nil {
			return "", err
		}
	}

	if opts.CSRFToken != "" {
		fmt.Fprintf(&buf, `<input type="hidden" name="csrf_token" value="%s">`+"\n", html.EscapeString(opts.CSRFToken))
	}

	buf.WriteString(`<div class="form-actions">` + "\n")
	buf.WriteString(`<button type="submit" class="primary">` + html.EscapeString(def.SubmitLabel(s.Editing)) + `</button>` + "\n")
	if s.Editing {
		buf.WriteString(`<button type="submit" class="secondary" formaction="/form/` + sid + `/delete" data-action="delete">` +
			html.EscapeString(def.Buttons.Delete) + `</button>` + "\n")
	}
	buf.WriteString(`</div>` + "\n")

	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits one field block into buf.
func writeField(buf *bytes.Buffer, s State, def *Definition, fd *FieldDef) error {
	f := fd.Field()
	name := html.EscapeString(f.String())

	buf.WriteString(`<div class="form-field`)
	if s.ShowError(f) {
		buf.WriteString(` has-error`)
	}
	buf.WriteString(`">` + "\n")

	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(fd.Label) + `</label>` + "\n")

	inputType := fd.Type
	if inputType == "password" && s.Visible[f] {
		inputType = "text"
	}

	buf.WriteString(`<input id="fld-` + name + `" name="` + name + `" type="` + inputType + `" data-field="` + name + `" required`)
	if fd.Mask != "" {
		buf.WriteString(` data-mask="` + html.EscapeString(fd.Mask) + `" inputmode="numeric"`)
	}
	if fd.Placeholder != "" {
		buf.WriteString(` placeholder="` + html.EscapeString(fd.Placeholder) + `"`)
	}
	if s.ShowError(f) {
		buf.WriteString(` aria-invalid="true"`)
	}
	if v := s.Values[f]; v != "" {
		buf.WriteString(` value="` + html.EscapeString(v) + `"`)
	}
	buf.WriteString(`>` + "\n")

	if f == Password || f == ConfirmPassword {
		state, caption := "off", "Mostrar"
		if s.Visible[f] {
			state, caption = "on", "Ocultar"
		}
		buf.WriteString(`<button type="button" class="toggle-visibility" data-action="toggle" data-field="` + name +
			`" data-visible="` + state + `">` + caption + `</button>` + "\n")
	}
	if f == Password {
		buf.WriteString(`<button type="button" class="generate" data-action="generate">` +
			html.EscapeString(def.Buttons.Generate) + `</button>` + "\n")
	}

	buf.WriteString(`<span class="error" aria-live="polite">`)
	if s.ShowError(f) {
		buf.WriteString(html.EscapeString(Message(f)))
	}
	buf.WriteString(`</span>` + "\n")

	buf.WriteString(`</div>` + "\n")
	return nil
}
