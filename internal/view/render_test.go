package view

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/yanizio/cadastro/internal/head"
	"github.com/yanizio/cadastro/internal/message"
	"github.com/yanizio/cadastro/internal/requestinfo"
	"github.com/yanizio/cadastro/internal/ua"
)

var testFS = fstest.MapFS{
	"page.html":     {Data: []byte(`{{ template "layout" . }}{{ define "content" }}<h1>{{ .Heading }}</h1>{{ template "dialogs" .Dialogs }}{{ end }}`)},
	"fragment.html": {Data: []byte(`<p>{{ .Heading }}</p>`)},
}

type pageData struct {
	Head    *head.Builder
	Info    *requestinfo.RequestInfo
	Heading string
	Dialogs []message.Dialog
}

func TestRender_PageWithLayout(t *testing.T) {
	Register("test", testFS)

	h := head.New()
	h.SetTitle("Cadastro")
	data := pageData{
		Head:    h,
		Info:    &requestinfo.RequestInfo{UA: ua.Info{Device: "Mobile"}, PrimaryLang: "pt-br"},
		Heading: "Novo <usuário>",
		Dialogs: []message.Dialog{message.Success("Sucesso", "Usuário criado")},
	}

	w := httptest.NewRecorder()
	if err := Render(w, "test", "page", data, CacheDefault); err != nil {
		t.Fatal(err)
	}
	body := w.Body.String()
	for _, want := range []string{
		`<html lang="pt-br">`,
		`<title>Cadastro</title>`,
		`data-device="mobile"`,
		`<h1>Novo &lt;usuário&gt;</h1>`,
		`class="dialog icon-success"`,
		`Usuário criado`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderToString_Fragment(t *testing.T) {
	Register("test", testFS)
	got, err := RenderToString("test", "fragment", pageData{Heading: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<p>x</p>" {
		t.Fatalf("got %q", got)
	}
}

func TestRender_Missing(t *testing.T) {
	Register("test", testFS)
	if _, err := RenderToString("test", "nope", nil); !strings.Contains(err.Error(), "file does not exist") {
		t.Fatalf("err = %v", err)
	}
	if _, err := RenderToString("unregistered", "page", nil); err == nil {
		t.Fatal("unregistered component rendered")
	}
}

func TestRender_OverrideWins(t *testing.T) {
	Register("test", testFS)
	root := t.TempDir()
	dir := filepath.Join(root, "components", "test", "templates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fragment.html"), []byte(`<b>{{ .Heading }}</b>`), 0o644); err != nil {
		t.Fatal(err)
	}
	SetOverrideRoot(root)
	defer SetOverrideRoot("")

	got, err := RenderToString("test", "fragment", pageData{Heading: "y"})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<b>y</b>" {
		t.Fatalf("override ignored: %q", got)
	}
}
