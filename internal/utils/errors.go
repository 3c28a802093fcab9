package utils

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies page-local errors.
type Kind string

const (
	// KindValidation blocks submission and is shown inline per field.
	KindValidation Kind = "validation"
	// KindSubmission is a page-level alert; the form stays editable.
	KindSubmission Kind = "submission"
	// KindPrecondition is terminal for the page view; no form is rendered.
	KindPrecondition Kind = "precondition"
)

// ErrSubmitInFlight is returned when a form is submitted while a previous
// submission has not resolved.
var ErrSubmitInFlight = errors.New("submission already in progress")

// CodedError carries an HTTP status alongside a user-facing message.
type CodedError struct {
	Kind    Kind
	Code    int
	Title   string
	Message string
	// Fields holds per-field messages for KindValidation.
	Fields map[string]string
}

func (e *CodedError) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+e.Fields[name])
		}
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

// ValidationError reports every failing field.
func ValidationError(fields map[string]string) error {
	return &CodedError{
		Kind:    KindValidation,
		Code:    http.StatusUnprocessableEntity,
		Message: "form has invalid fields",
		Fields:  fields,
	}
}

// SubmissionFailure is the error form of a failed submission result.
func SubmissionFailure(title, message string) error {
	return &CodedError{Kind: KindSubmission, Code: http.StatusOK, Title: title, Message: message}
}

// MissingPrecondition reports a page that cannot show its form.
func MissingPrecondition(message string) error {
	return &CodedError{Kind: KindPrecondition, Code: http.StatusBadRequest, Title: "Error", Message: message}
}

// IsKind reports whether err wraps a CodedError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *CodedError
	return errors.As(err, &ce) && ce.Kind == kind
}

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrSubmitInFlight) {
		return http.StatusConflict
	}
	var ce *CodedError
	if errors.As(err, &ce) && ce.Code != 0 {
		return ce.Code
	}
	return http.StatusInternalServerError
}
