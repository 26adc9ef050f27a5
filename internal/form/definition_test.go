package form

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDefinition(t *testing.T) {
	d, err := DefaultDefinition()
	if err != nil {
		t.Fatalf("embedded definition: %v", err)
	}
	if d.Field(Phone).Mask != "(99) 99999-9999" {
		t.Errorf("phone mask = %q", d.Field(Phone).Mask)
	}
	if d.Field(NationalID).Mask != "999.999.999-99" {
		t.Errorf("cpf mask = %q", d.Field(NationalID).Mask)
	}
	if d.SubmitLabel(false) != "Salvar" || d.SubmitLabel(true) != "Atualizar" {
		t.Errorf("submit captions = %q / %q", d.SubmitLabel(false), d.SubmitLabel(true))
	}
	for _, f := range Fields {
		if d.Field(f).Field() != f {
			t.Errorf("index for %s points at %s", f, d.Field(f).Field())
		}
	}
}

func TestParseDefinition_Errors(t *testing.T) {
	base, err := os.ReadFile("cadastro.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]struct {
		yaml string
		want string
	}{
		"missing id": {
			yaml: strings.Replace(string(base), "id: users/cadastro", "", 1),
			want: "missing required 'id'",
		},
		"unknown field": {
			yaml: strings.Replace(string(base), "name: confirmEmail", "name: nickname", 1),
			want: "unknown form field",
		},
		"duplicate": {
			yaml: strings.Replace(string(base), "name: confirmEmail", "name: email", 1),
			want: "duplicate field",
		},
		"bad mask": {
			yaml: strings.Replace(string(base), `"999.999.999-99"`, `"000.000"`, 1),
			want: "digit slot",
		},
		"bad type": {
			yaml: strings.Replace(string(base), "type: tel", "type: range", 1),
			want: "unsupported type",
		},
		"missing caption": {
			yaml: strings.Replace(string(base), "delete: Excluir", "", 1),
			want: "button captions",
		},
	}
	for name, c := range cases {
		_, err := ParseDefinition([]byte(c.yaml), name)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: err = %v, want %q", name, err, c.want)
		}
	}
}

func TestLoadDefinition_File(t *testing.T) {
	base, err := os.ReadFile("cadastro.yaml")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "form.yaml")
	custom := strings.Replace(string(base), "label: Nome", "label: Nome completo", 1)
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDefinition(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Field(Name).Label != "Nome completo" {
		t.Fatalf("label = %q", d.Field(Name).Label)
	}

	if _, err := LoadDefinition(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestApplyMask(t *testing.T) {
	cases := []struct{ mask, in, want string }{
		{"(99) 99999-9999", "11912345678", "(11) 91234-5678"},
		{"(99) 99999-9999", "1191234", "(11) 91234"},
		{"(99) 99999-9999", "(11) 91234-56789", "(11) 91234-5678"},
		{"(99) 99999-9999", "abc", ""},
		{"999.999.999-99", "12345678901", "123.456.789-01"},
		{"999.999.999-99", "123", "123"},
		{"999.999.999-99", "1234", "123.4"},
		{"", "livre", "livre"},
	}
	for _, c := range cases {
		if got := ApplyMask(c.mask, c.in); got != c.want {
			t.Errorf("ApplyMask(%q, %q) = %q, want %q", c.mask, c.in, got, c.want)
		}
	}
}

func TestApplyMask_FullMaskIsValid(t *testing.T) {
	var v Values
	v[Phone] = ApplyMask("(99) 99999-9999", "11912345678")
	v[NationalID] = ApplyMask("999.999.999-99", "12345678901")
	if Invalid(Phone, v) || Invalid(NationalID, v) {
		t.Fatal("fully masked values flagged invalid")
	}
}
