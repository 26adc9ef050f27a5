package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnrich(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/form/x/event", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	r.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("no RequestInfo in context")
	}
	if got.Geo.IP.String() != "203.0.113.9" {
		t.Errorf("ip = %v", got.Geo.IP)
	}
	if got.PrimaryLang != "pt-br" {
		t.Errorf("lang = %q", got.PrimaryLang)
	}
	if got.UA.Browser != "Chrome" {
		t.Errorf("browser = %q", got.UA.Browser)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestClientIP_Fallbacks(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:4321"
	if ip := clientIP(r); ip.String() != "192.0.2.1" {
		t.Errorf("remote addr ip = %v", ip)
	}
	r.Header.Set("X-Real-Ip", "198.51.100.7")
	if ip := clientIP(r); ip.String() != "198.51.100.7" {
		t.Errorf("x-real-ip = %v", ip)
	}
}

func TestInitGeo_EmptyPathDisables(t *testing.T) {
	closeFn, err := InitGeo("")
	if err != nil {
		t.Fatal(err)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	if g := lookupGeo(nil); g.CountryISO != "" {
		t.Fatalf("geo = %+v", g)
	}
}

func TestInitGeo_MissingFile(t *testing.T) {
	if _, err := InitGeo("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Fatal("missing db accepted")
	}
}

func TestLogFields_Nil(t *testing.T) {
	var ri *RequestInfo
	if ri.LogFields() != nil {
		t.Fatal("nil info produced fields")
	}
}
