package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestForceHTTPS(t *testing.T) {
	cases := []struct {
		name    string
		enabled bool
		host    string
		proto   string
		tls     bool
		want    int
	}{
		{"disabled", false, "example.com", "", false, http.StatusNoContent},
		{"plain http redirects", true, "example.com", "", false, http.StatusPermanentRedirect},
		{"localhost passes", true, "localhost:8080", "", false, http.StatusNoContent},
		{"loopback ip passes", true, "127.0.0.1:8080", "", false, http.StatusNoContent},
		{"tls passes", true, "example.com", "", true, http.StatusNoContent},
		{"proxy https passes", true, "example.com", "https", false, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/users/1?x=y", nil)
			r.Host = tc.host
			if tc.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			if tc.tls {
				r.TLS = &tls.ConnectionState{}
			}
			w := httptest.NewRecorder()
			ForceHTTPS(func() bool { return tc.enabled })(ok).ServeHTTP(w, r)
			if w.Code != tc.want {
				t.Fatalf("code = %d, want %d", w.Code, tc.want)
			}
			if tc.want == http.StatusPermanentRedirect {
				if loc := w.Header().Get("Location"); loc != "https://example.com/users/1?x=y" {
					t.Fatalf("Location = %q", loc)
				}
			}
		})
	}
}

func TestForceHTTPS_FollowsToggle(t *testing.T) {
	on := false
	h := ForceHTTPS(func() bool { return on })(ok)

	get := func() int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = "example.com"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	if code := get(); code != http.StatusNoContent {
		t.Fatalf("off: code = %d", code)
	}
	on = true
	if code := get(); code != http.StatusPermanentRedirect {
		t.Fatalf("on: code = %d", code)
	}
}

func TestSecurity(t *testing.T) {
	w := httptest.NewRecorder()
	Security(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy", "Permissions-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("%s missing", h)
		}
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS sent over plain HTTP")
	}
}
