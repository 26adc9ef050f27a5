package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
http:
  listen_addr: ":8080"
  read_timeout: 5s
database:
  driver: mysql
  dsn: "cadastro:%s@tcp(localhost:3306)/cadastro?parseTime=true"
  password: "vault:secret/cadastro/db#password"
form:
  bcrypt_cost: 10
session:
  idle_ttl: 10m
  event_rate: 20
`

func writeRoot(t *testing.T, body string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CADASTRO_ROOT", root)
}

func fakeVault(t *testing.T) SecretFunc {
	return func(_ context.Context, path, key string) (string, error) {
		if path != "secret/cadastro/db" || key != "password" {
			t.Errorf("resolve(%q, %q)", path, key)
		}
		return "s3cret", nil
	}
}

func TestLoad_LayersAndVault(t *testing.T) {
	writeRoot(t, testYAML)
	t.Setenv("CADASTRO_HTTP__LISTEN_ADDR", ":9090")

	cfg, err := Load(context.Background(), fakeVault(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, env override lost", cfg.HTTP.ListenAddr)
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("read_timeout = %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.Session.IdleTTL != 10*time.Minute || cfg.Session.EventRate != 20 {
		t.Errorf("session = %+v", cfg.Session)
	}
	want := "cadastro:s3cret@tcp(localhost:3306)/cadastro?parseTime=true"
	if got := cfg.Database.ConnString(); got != want {
		t.Errorf("ConnString = %q, want %q", got, want)
	}
	if Get() != cfg {
		t.Error("Get does not return the cached config")
	}
}

func TestReload_PicksUpChanges(t *testing.T) {
	writeRoot(t, testYAML)
	t.Setenv("CADASTRO_HTTP__FORCE_HTTPS", "false")

	first, err := Load(context.Background(), fakeVault(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.HTTP.ForceHTTPS {
		t.Fatal("force_https set before reload")
	}

	t.Setenv("CADASTRO_HTTP__FORCE_HTTPS", "true")
	if err := Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	got := Get()
	if got == first || !got.HTTP.ForceHTTPS {
		t.Fatal("Reload did not swap in the new config")
	}
	if got.Database.ConnString() != first.Database.ConnString() {
		t.Errorf("vault resolver not reused: %q", got.Database.ConnString())
	}

	t.Setenv("CADASTRO_DATABASE__DRIVER", "postgres")
	if err := Reload(context.Background()); err == nil {
		t.Fatal("invalid reload accepted")
	}
	if Get() != got {
		t.Error("failed reload replaced the cached config")
	}
}

func TestLoad_VaultRefWithoutResolver(t *testing.T) {
	writeRoot(t, testYAML)
	if _, err := Load(context.Background(), nil); !errors.Is(err, ErrVaultUnavailable) {
		t.Fatalf("err = %v, want ErrVaultUnavailable", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad driver": `
http: {listen_addr: ":8080"}
database: {driver: postgres, dsn: "x"}
`,
		"template without password": `
http: {listen_addr: ":8080"}
database: {driver: mysql, dsn: "u:%s@/db"}
`,
		"missing listen addr": `
database: {driver: sqlite, dsn: "file:cadastro.db"}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			writeRoot(t, body)
			if _, err := Load(context.Background(), nil); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseVaultRef(t *testing.T) {
	p, k, err := ParseVaultRef("vault:kv/app/db#pw")
	if err != nil || p != "kv/app/db" || k != "pw" {
		t.Fatalf("got %q %q %v", p, k, err)
	}
	for _, bad := range []string{"kv/app#pw", "vault:kv#pw", "vault:kv/app", "vault:kv/app#"} {
		if _, _, err := ParseVaultRef(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}
