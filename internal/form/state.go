package form

import (
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
)

// Phase is the coarse submit state of a form.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseNavigated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseNavigated:
		return "navigated"
	}
	return "unknown"
}

// Alert is the page-level message left by the last submission.
type Alert struct {
	Kind    notify.Kind
	Title   string
	Message string
}

// FieldState is one field of a State snapshot.
type FieldState struct {
	schema.Field
	Value   string
	Verdict schema.Verdict
	Touched bool
	Dirty   bool
}

// VisibleError is the message to display: only once the user has interacted with the field.
func (f FieldState) VisibleError() string {
	if !f.Touched && !f.Dirty {
		return ""
	}
	return f.Verdict.Message
}

// State is an immutable snapshot of a Controller.
type State struct {
	Form       string
	Fields     []FieldState
	Valid      bool
	Submitting bool
	Phase      Phase
	Alert      *Alert
	RedirectTo string
	Closed     bool
}

// Field returns the snapshot of the named field.
func (s State) Field(name string) (FieldState, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldState{}, false
}

// Value returns the current value of name.
func (s State) Value(name string) string {
	f, _ := s.Field(name)
	return f.Value
}
