package form

import (
	"context"

	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

// Kind tags a submission outcome.
type Kind int

const (
	KindSuccess Kind = iota + 1
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	}
	return "unknown"
}

// Result is what a Submission Handler resolves to.
type Result struct {
	Kind Kind
	// Title and Message fill the page alert. A success without a message
	// shows no alert.
	Title   string
	Message string
	// RedirectTo triggers navigation when set on success.
	RedirectTo string
	// Notice is published to the notice bus on behalf of the form.
	Notice *notify.Notice
	// Reset lists fields the controller clears once the result is applied.
	// ResetAll clears every field.
	Reset    []string
	ResetAll bool
	// Principal names the signed-in account after a successful login.
	Principal string
	Remember  bool
}

// Err returns the failure as a KindSubmission error, or nil on success.
func (r Result) Err() error {
	if r.Kind != KindFailure {
		return nil
	}
	return utils.SubmissionFailure(r.Title, r.Message)
}

// Success builds a success result.
func Success() Result { return Result{Kind: KindSuccess} }

// Failure builds a failure result with an alert.
func Failure(title, message string) Result {
	return Result{Kind: KindFailure, Title: title, Message: message}
}

// Handler performs the remote call behind a valid submit. It receives a copy
// of the form values and must not retain it. The error return is reserved for
// infrastructure failures such as a cancelled context.
type Handler interface {
	Submit(ctx context.Context, values schema.Values) (Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, values schema.Values) (Result, error)

func (f HandlerFunc) Submit(ctx context.Context, values schema.Values) (Result, error) {
	return f(ctx, values)
}
