// internal/form/definition.go
//
// Cadastro – Forms subsystem: YAML definition loader.
//
// Context
//   The validation rules and inline messages are fixed in code, but the
//   presentation of each field (label, input type, mask, placeholder) and
//   the button captions are declared in YAML so operators can adjust copy
//   without a rebuild.  A default definition is embedded in the binary; an
//   override file may replace it at startup.
//
// Workflow
//   •  Structs mirror the YAML schema: Definition → FieldDef.
//   •  LoadDefinition parses one YAML file and validates structural rules.
//   •  DefaultDefinition parses the embedded cadastro.yaml once.
//   •  Definition.Field offers indexed access by Field after validation.
//
//------------------------------------------------------------------------------

package form

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed cadastro.yaml
var defaultYAML []byte

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Definition describes how the registration form is presented.
type Definition struct {
	ID      string     `yaml:"id"`      // Form identifier, e.g. “users/cadastro”.
	Title   string     `yaml:"title"`   // Page title, optional.
	Fields  []FieldDef `yaml:"fields"`  // One entry per form field, display order.
	Buttons Buttons    `yaml:"buttons"` // Captions.

	index [numFields]int // Field → position in Fields, built by validate
}

// FieldDef describes a single input control.
type FieldDef struct {
	Name        string `yaml:"name"`        // Wire name (see ParseField).  Required.
	Label       string `yaml:"label"`       // Human-readable label.  Required.
	Type        string `yaml:"type"`        // text, email, tel, or password.
	Mask        string `yaml:"mask"`        // '9' digit slots plus literals, optional.
	Placeholder string `yaml:"placeholder"` // Optional placeholder text.

	field Field
}

// Buttons holds the captions of the form's action buttons.
type Buttons struct {
	Create   string `yaml:"create"`   // submit caption in create mode
	Update   string `yaml:"update"`   // submit caption in edit mode
	Delete   string `yaml:"delete"`   // edit mode only
	Generate string `yaml:"generate"` // password generator
}

// Field returns the definition of f.
func (d *Definition) Field(f Field) *FieldDef { return &d.Fields[d.index[f]] }

// SubmitLabel returns the submit caption for the given mode.
func (d *Definition) SubmitLabel(editing bool) string {
	if editing {
		return d.Buttons.Update
	}
	return d.Buttons.Create
}

// Field returns the form field this definition describes.
func (fd *FieldDef) Field() Field { return fd.field }

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

var (
	defaultOnce sync.Once
	defaultDef  *Definition
	defaultErr  error
)

// DefaultDefinition returns the embedded definition.
func DefaultDefinition() (*Definition, error) {
	defaultOnce.Do(func() {
		defaultDef, defaultErr = ParseDefinition(defaultYAML, "embedded cadastro.yaml")
	})
	return defaultDef, defaultErr
}

// LoadDefinition parses one YAML file and validates its structure.  An empty
// path returns the embedded default.
func LoadDefinition(path string) (*Definition, error) {
	if path == "" {
		return DefaultDefinition()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseDefinition(raw, path)
}

// ParseDefinition decodes and validates YAML bytes.  source names the origin
// in error messages.
func ParseDefinition(raw []byte, source string) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", source, err)
	}
	if err := d.validate(source); err != nil {
		return nil, err
	}
	return &d, nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var inputTypes = map[string]bool{
	"text":     true,
	"email":    true,
	"tel":      true,
	"password": true,
}

// validate enforces rules YAML tags cannot express: every form field is
// declared exactly once, types are known, and masks are well formed.
func (d *Definition) validate(source string) error {
	if d.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", source)
	}

	var seen Flags
	for i := range d.Fields {
		fd := &d.Fields[i]
		f, err := ParseField(fd.Name)
		if err != nil {
			return fmt.Errorf("form %s: %w", source, err)
		}
		if seen[f] {
			return fmt.Errorf("form %s: duplicate field '%s'", source, fd.Name)
		}
		seen[f] = true
		fd.field = f
		d.index[f] = i

		if fd.Label == "" {
			return fmt.Errorf("form %s: field '%s' missing 'label'", source, fd.Name)
		}
		if fd.Type == "" {
			fd.Type = "text"
		}
		if !inputTypes[fd.Type] {
			return fmt.Errorf("form %s: field '%s' has unsupported type '%s'", source, fd.Name, fd.Type)
		}
		if err := validateMask(fd.Mask); err != nil {
			return fmt.Errorf("form %s: field '%s': %w", source, fd.Name, err)
		}
	}

	for _, f := range Fields {
		if !seen[f] {
			return fmt.Errorf("form %s: field '%s' is not declared", source, f)
		}
	}

	b := &d.Buttons
	if b.Create == "" || b.Update == "" || b.Delete == "" || b.Generate == "" {
		return fmt.Errorf("form %s: all button captions are required", source)
	}
	return nil
}
