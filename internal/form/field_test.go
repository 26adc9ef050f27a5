package form

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(f.String())
		if err != nil || got != f {
			t.Errorf("ParseField(%q) = %v, %v", f.String(), got, err)
		}
	}

	aliases := map[string]Field{
		"nome": Name, "telefone": Phone, "cpf": NationalID,
		"senha": Password, "confirmSenha": ConfirmPassword,
	}
	for in, want := range aliases {
		if got, err := ParseField(in); err != nil || got != want {
			t.Errorf("ParseField(%q) = %v, %v, want %v", in, got, err, want)
		}
	}

	for _, bad := range []string{"", "Name", "idade"} {
		if _, err := ParseField(bad); !errors.Is(err, ErrUnknownField) {
			t.Errorf("ParseField(%q) err = %v", bad, err)
		}
	}
}

func TestValues_MapRoundTrip(t *testing.T) {
	v := ValuesFromMap(map[string]string{"name": "Ana", "email": "a@b", "extra": "x"})
	if v.Get(Name) != "Ana" || v.Get(Email) != "a@b" || v.Get(Phone) != "" {
		t.Fatalf("values = %#v", v)
	}

	m := v.Map()
	if len(m) != len(Fields) {
		t.Fatalf("map has %d keys, want %d", len(m), len(Fields))
	}
	if m["name"] != "Ana" || m["phone"] != "" {
		t.Fatalf("map = %v", m)
	}
	if _, ok := m["extra"]; ok {
		t.Fatal("unknown key survived")
	}
}

func TestField_JSONKey(t *testing.T) {
	b, err := json.Marshal(map[Field]bool{ConfirmEmail: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"confirmEmail":true}` {
		t.Fatalf("json = %s", b)
	}

	var back map[Field]bool
	if err := json.Unmarshal(b, &back); err != nil || !back[ConfirmEmail] {
		t.Fatalf("unmarshal = %v, %v", back, err)
	}
}
