package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadastro/internal/component"
	"github.com/yanizio/cadastro/internal/config"
	"github.com/yanizio/cadastro/internal/form"
)

type stubComponent struct{}

func (stubComponent) Name() string               { return "stub" }
func (stubComponent) Migrations(string) []string { return nil }
func (stubComponent) Init(component.Env) error   { return nil }
func (stubComponent) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("home")) })
	return r
}

func TestGenpass(t *testing.T) {
	cmd := genpassCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-n", "3"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for _, l := range lines {
		if len(l) != form.GeneratedPasswordLength {
			t.Fatalf("password %q has length %d", l, len(l))
		}
	}
}

func TestRouter(t *testing.T) {
	h := router(&config.Config{}, []component.Component{stubComponent{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "home" {
		t.Fatalf("/ = %d %q", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("/metrics = %d", rec.Code)
	}
}
