// Package schema describes form validation as data: ordered rules per field
// plus cross-field rules, interpreted by a pure evaluator.
package schema

// FieldType is the input kind of a field.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypePassword FieldType = "password"
	TypeBoolean  FieldType = "boolean"
)

// Values maps field names to raw input. Boolean fields hold "true" or "".
type Values map[string]string

// Clone returns an independent copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Bool reports whether a boolean field is checked.
func (v Values) Bool(name string) bool {
	switch v[name] {
	case "true", "on", "1":
		return true
	}
	return false
}

// Field is one named, independently validated input.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Placeholder string
	Description string
	Rules       []Rule
}

// Form is an ordered set of fields plus cross-field rules.
type Form struct {
	Name   string
	Fields []Field
	Cross  []CrossRule
}

// Verdict is the outcome of validating one field. The zero value is valid.
type Verdict struct {
	Message string
}

// Valid reports whether the field passed.
func (v Verdict) Valid() bool { return v.Message == "" }

// Invalid builds a failing verdict.
func Invalid(message string) Verdict { return Verdict{Message: message} }

// Results maps field names to verdicts.
type Results map[string]Verdict

// Valid is the logical AND of every field verdict.
func (r Results) Valid() bool {
	for _, v := range r {
		if !v.Valid() {
			return false
		}
	}
	return true
}

// Errors returns the messages of failing fields.
func (r Results) Errors() map[string]string {
	out := make(map[string]string)
	for name, v := range r {
		if !v.Valid() {
			out[name] = v.Message
		}
	}
	return out
}

// Field returns the field named name.
func (f *Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Names returns field names in declaration order.
func (f *Form) Names() []string {
	names := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Validate evaluates every field and cross rule against values.
func (f *Form) Validate(values Values) Results {
	results := make(Results, len(f.Fields))
	for _, field := range f.Fields {
		results[field.Name] = f.ValidateField(field.Name, values)
	}
	return results
}

// ValidateField evaluates the rules of one field, then the cross rules that
// target it. The first failure wins.
func (f *Form) ValidateField(name string, values Values) Verdict {
	field, ok := f.Field(name)
	if !ok {
		return Verdict{}
	}
	value := values[name]
	for _, rule := range field.Rules {
		if msg, ok := rule.check(value); !ok {
			return Invalid(msg)
		}
	}
	for _, cross := range f.Cross {
		if cross.Target != name {
			continue
		}
		if msg, ok := cross.check(values); !ok {
			return Invalid(msg)
		}
	}
	return Verdict{}
}

// Dependents returns the fields whose verdict may change when name changes:
// name itself and the targets of cross rules that read it.
func (f *Form) Dependents(name string) []string {
	if _, ok := f.Field(name); !ok {
		return nil
	}
	out := []string{name}
	seen := map[string]bool{name: true}
	for _, cross := range f.Cross {
		if !cross.references(name) || seen[cross.Target] {
			continue
		}
		seen[cross.Target] = true
		out = append(out, cross.Target)
	}
	return out
}
