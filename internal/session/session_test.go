package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCookie_SetThenClear(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id := "6f1c2f4e-8b0a-4c57-9a43-1d2e3f4a5b6c"

	w := httptest.NewRecorder()
	SetCookie(w, r, id, 0)
	set := w.Result().Cookies()
	if len(set) != 1 || set[0].Value != id {
		t.Fatalf("SetCookie wrote %+v", set)
	}

	r.AddCookie(set[0])
	if got, ok := CookieID(r); !ok || got != id {
		t.Fatalf("CookieID = %q, %v", got, ok)
	}

	w = httptest.NewRecorder()
	ClearCookie(w, r)
	cl := w.Result().Cookies()
	if len(cl) != 1 || cl[0].Name != cookieName || cl[0].MaxAge >= 0 || cl[0].Value != "" {
		t.Fatalf("ClearCookie wrote %+v", cl)
	}
}
