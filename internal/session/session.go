// internal/session/session.go
//
// Cadastro – Form session cookie.
//
// Context
//   The page handler mounts a form and hands the browser its session id in
//   a cookie named "cadastro_form".  Event and submit URLs also carry the id,
//   so the cookie is a fallback for requests that arrive without one, such
//   as a plain reload of the page.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"

	"github.com/google/uuid"
)

const cookieName = "cadastro_form"

// SetCookie stores id in the form session cookie.
func SetCookie(w http.ResponseWriter, r *http.Request, id string, ttl int) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   ttl,
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the form session cookie.  Used when the id it names
// is no longer in the Store.
func ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieID returns the session id stored in the cookie.
//
// ok == false when the cookie is missing or not a UUID.
func CookieID(r *http.Request) (id string, ok bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// ValidID reports whether id has the shape of a session id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
