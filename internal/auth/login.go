// Package auth holds the submission handlers of the auth screens, the account
// directory they check against, reset tokens, and cookie sessions.
package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

// Paths navigated to by the handlers.
const (
	PathLogin     = "/"
	PathDashboard = "/dashboard"
)

const msgInvalidLogin = "Invalid email or password. Please try again."

// Login checks credentials against the directory.
type Login struct {
	Directory *Directory
	Remote    Remote
	Latency   time.Duration
	Logger    *zap.Logger
}

func (l *Login) Submit(ctx context.Context, v schema.Values) (form.Result, error) {
	if err := remote(l.Remote).Call(ctx, l.Latency); err != nil {
		return form.Result{}, err
	}
	email := v[schema.FieldEmail]
	log := logger(l.Logger).With(zap.String("email", utils.MaskEmail(email)))

	acct, err := l.Directory.Authenticate(email, v[schema.FieldPassword])
	if errors.Is(err, ErrInvalidCredentials) {
		log.Info("login rejected")
		return form.Failure("Login Failed", msgInvalidLogin), nil
	}
	if err != nil {
		return form.Result{}, err
	}

	log.Info("login accepted")
	return form.Result{
		Kind:       form.KindSuccess,
		RedirectTo: PathDashboard,
		Principal:  acct.Email,
		Remember:   v.Bool(schema.FieldRememberMe),
	}, nil
}

func remote(r Remote) Remote {
	if r == nil {
		return Simulator{}
	}
	return r
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
