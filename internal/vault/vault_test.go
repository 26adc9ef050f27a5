package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// kvServer answers KV-v2 reads for secret/cadastro/db.
func kvServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/cadastro/db" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"password":"s3cret","port":3306},` +
			`"metadata":{"created_time":"2024-01-01T00:00:00Z","deletion_time":"","destroyed":false,"version":1}}}`))
	}))
}

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	cfg := vault.DefaultConfig()
	cfg.Address = url
	api, err := vault.NewClient(cfg)
	if err != nil {
		t.Fatal(err)
	}
	api.SetToken("test")
	return newClient(api)
}

func TestResolve_Caches(t *testing.T) {
	var hits atomic.Int32
	srv := kvServer(t, &hits)
	defer srv.Close()
	c := testClient(t, srv.URL)

	for i := 0; i < 3; i++ {
		got, err := c.Resolve(context.Background(), "secret/cadastro/db", "password")
		if err != nil {
			t.Fatal(err)
		}
		if got != "s3cret" {
			t.Fatalf("got %q", got)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server hits = %d, want 1", n)
	}
}

func TestGetKV_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := kvServer(t, &hits)
	defer srv.Close()
	c := testClient(t, srv.URL)
	ctx := context.Background()

	if _, err := c.GetKV(ctx, "secret/cadastro/db", "missing", 0); err == nil {
		t.Error("missing key accepted")
	}
	if _, err := c.GetKV(ctx, "secret/cadastro/db", "port", 0); err == nil {
		t.Error("non-string value accepted")
	}
	if _, err := c.GetKV(ctx, "secret/other", "password", 0); err == nil {
		t.Error("unknown secret accepted")
	}
	if _, err := c.GetKV(ctx, "", "password", time.Minute); err == nil {
		t.Error("empty path accepted")
	}
}

func TestGetKV_ZeroTTLSkipsCache(t *testing.T) {
	var hits atomic.Int32
	srv := kvServer(t, &hits)
	defer srv.Close()
	c := testClient(t, srv.URL)

	for i := 0; i < 2; i++ {
		if _, err := c.GetKV(context.Background(), "secret/cadastro/db", "password", 0); err != nil {
			t.Fatal(err)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("server hits = %d, want 2", n)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	t.Setenv("VAULT_ADDR", "")
	if _, err := New(context.Background()); err != ErrNotConfigured {
		t.Fatalf("err = %v", err)
	}
}
