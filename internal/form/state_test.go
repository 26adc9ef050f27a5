// internal/form/state_test.go
//
// Unit-tests for the reducer: touched gating, evaluation timing, and the
// submit gate.

package form

import "testing"

// validValues is a submission every rule accepts.
func validValues() Values {
	return Values{
		Name:            "Maria Silva",
		Phone:           "(11) 91234-5678",
		NationalID:      "123.456.789-01",
		Email:           "maria@example.com",
		ConfirmEmail:    "maria@example.com",
		Password:        "segredo1",
		ConfirmPassword: "segredo1",
	}
}

func reduceAll(s State, evs ...Event) State {
	for _, ev := range evs {
		s, _ = Reduce(s, ev)
	}
	return s
}

func TestReduce_TouchedGating(t *testing.T) {
	s := reduceAll(State{}, ValueChanged{Field: Name, Value: "R2D2"})
	if s.ShowError(Name) {
		t.Fatal("error visible before blur")
	}
	if s.Touched[Name] {
		t.Fatal("value change must not touch the field")
	}

	s = reduceAll(s, Blurred{Field: Name})
	if !s.Touched[Name] || !s.ShowError(Name) {
		t.Fatalf("after blur: touched=%v show=%v", s.Touched[Name], s.ShowError(Name))
	}
}

func TestReduce_LiveRevalidationAfterTouch(t *testing.T) {
	s := reduceAll(State{},
		ValueChanged{Field: Email, Value: "maria"},
		Blurred{Field: Email},
	)
	if !s.ShowError(Email) {
		t.Fatal("expected email error after blur")
	}

	s = reduceAll(s, ValueChanged{Field: Email, Value: "maria@x.com"})
	if s.Invalid[Email] {
		t.Fatal("touched field not re-evaluated on change")
	}
}

func TestReduce_UntouchedFieldNotEvaluatedOnChange(t *testing.T) {
	s := reduceAll(State{}, ValueChanged{Field: Phone, Value: "1"})
	if s.Invalid[Phone] {
		t.Fatal("untouched field evaluated on change")
	}
}

func TestReduce_PairedMismatchFollowsPrimary(t *testing.T) {
	s := reduceAll(State{},
		ValueChanged{Field: Email, Value: "a@b.com"},
		ValueChanged{Field: ConfirmEmail, Value: "a@b.com"},
		Blurred{Field: ConfirmEmail},
	)
	if s.Invalid[ConfirmEmail] {
		t.Fatal("equal emails flagged as mismatch")
	}

	s = reduceAll(s, ValueChanged{Field: Email, Value: "a@c.com"})
	if !s.ShowError(ConfirmEmail) {
		t.Fatal("mismatch went stale after primary changed")
	}
}

func TestReduce_SubmitRejected(t *testing.T) {
	v := validValues()
	v[Phone] = "(11) 1234-567"
	s := State{Values: v}

	next, effects := Reduce(s, SubmitRequested{})
	if next.Touched != all() {
		t.Fatalf("submit must touch every field: %v", next.Touched)
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %d, want 1", len(effects))
	}
	rej, ok := effects[0].(Rejected)
	if !ok {
		t.Fatalf("effect = %T, want Rejected", effects[0])
	}
	if rej.Notice != RejectedNotice {
		t.Fatalf("notice = %+v", rej.Notice)
	}
	if !next.ShowError(Phone) {
		t.Fatal("phone error not visible after rejected submit")
	}
}

func TestReduce_SubmitRejectsEmptyEvenWithoutFlags(t *testing.T) {
	// Blank one field at a time, together with its confirmation so the
	// mismatch rule stays quiet.
	for _, f := range Fields {
		v := validValues()
		v[f] = ""
		if f == Email {
			v[ConfirmEmail] = ""
		}
		if f == Password {
			v[ConfirmPassword] = ""
		}
		_, effects := Reduce(State{Values: v}, SubmitRequested{})
		if _, ok := effects[0].(Rejected); !ok {
			t.Errorf("empty %s accepted", f)
		}
	}
}

func TestReduce_SubmitAccepted(t *testing.T) {
	s := State{Values: validValues()}
	next, effects := Reduce(s, SubmitRequested{})
	if len(effects) != 1 {
		t.Fatalf("effects = %d, want 1", len(effects))
	}
	acc, ok := effects[0].(Accepted)
	if !ok {
		t.Fatalf("effect = %T, want Accepted", effects[0])
	}
	if acc.Values != validValues() {
		t.Fatalf("accepted values = %v", acc.Values)
	}
	if next.Invalid.Any() {
		t.Fatalf("flags set on valid form: %v", next.Invalid)
	}
}

func TestReduce_DeleteOnlyWhileEditing(t *testing.T) {
	if _, eff := Reduce(State{}, DeleteRequested{}); len(eff) != 0 {
		t.Fatal("delete effect in create mode")
	}
	s := State{Editing: true, Values: validValues()}
	next, eff := Reduce(s, DeleteRequested{})
	if len(eff) != 1 {
		t.Fatalf("effects = %d, want 1", len(eff))
	}
	if next != s {
		t.Fatal("delete changed local state")
	}
}

func TestReduce_PasswordGenerated(t *testing.T) {
	s := reduceAll(State{},
		ValueChanged{Field: ConfirmPassword, Value: "outra"},
		Blurred{Field: ConfirmPassword},
		PasswordGenerated{Password: "Ab3$efgh"},
	)
	if s.Values[Password] != "Ab3$efgh" || s.Values[ConfirmPassword] != "Ab3$efgh" {
		t.Fatalf("values = %q / %q", s.Values[Password], s.Values[ConfirmPassword])
	}
	if s.Invalid[ConfirmPassword] || s.Invalid[Password] {
		t.Fatal("generated password flagged")
	}
	if s.Touched[Password] {
		t.Fatal("generator must not touch fields")
	}
}

func TestReduce_VisibilityToggled(t *testing.T) {
	s := reduceAll(State{}, VisibilityToggled{Field: Password})
	if !s.Visible[Password] || s.Visible[ConfirmPassword] {
		t.Fatalf("visible = %v", s.Visible)
	}
	s = reduceAll(s, VisibilityToggled{Field: Password}, VisibilityToggled{Field: Name})
	if s.Visible.Any() {
		t.Fatalf("visible = %v", s.Visible)
	}
}

func TestReduce_SeededOnlyWhileEditing(t *testing.T) {
	data := map[string]string{"name": "Ana", "email": "ana@x.com"}
	if s := reduceAll(State{}, Seeded{Data: data}); s.Values != (Values{}) {
		t.Fatal("create form accepted seed")
	}
	s := reduceAll(State{Editing: true}, Seeded{Data: data})
	if s.Values[Name] != "Ana" || s.Values[Email] != "ana@x.com" || s.Values[Phone] != "" {
		t.Fatalf("seeded values = %v", s.Values)
	}
	if s.Touched.Any() {
		t.Fatal("seeding touched fields")
	}
}

func TestState_Errors(t *testing.T) {
	s := reduceAll(State{}, Blurred{Field: Name}, Blurred{Field: Email})
	errs := s.Errors()
	if len(errs) != 2 || errs[Name] != Message(Name) || errs[Email] != Message(Email) {
		t.Fatalf("errors = %v", errs)
	}
}
