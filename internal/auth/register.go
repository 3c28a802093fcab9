package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

const msgEmailTaken = "An account with this email already exists. Please try a different email or log in."

// Registration rejects reserved emails and accepts everything else.
// Accepted registrations are not stored.
type Registration struct {
	reserved map[string]struct{}
	Remote   Remote
	Latency  time.Duration
	Logger   *zap.Logger
}

// NewRegistration returns a handler that treats reserved as existing accounts.
func NewRegistration(reserved []string) *Registration {
	r := &Registration{reserved: make(map[string]struct{}, len(reserved))}
	for _, email := range reserved {
		r.reserved[email] = struct{}{}
	}
	return r
}

func (r *Registration) Submit(ctx context.Context, v schema.Values) (form.Result, error) {
	if err := remote(r.Remote).Call(ctx, r.Latency); err != nil {
		return form.Result{}, err
	}
	email := v[schema.FieldEmail]
	log := logger(r.Logger).With(zap.String("email", utils.MaskEmail(email)))

	if _, taken := r.reserved[email]; taken {
		log.Info("registration rejected: email exists")
		res := form.Failure("Registration Failed", msgEmailTaken)
		res.Reset = []string{schema.FieldEmail}
		return res, nil
	}

	log.Info("registration accepted")
	n := notify.Success("Registration successful!", "You can now log in with your new account.")
	return form.Result{
		Kind:       form.KindSuccess,
		RedirectTo: PathLogin,
		Notice:     &n,
	}, nil
}
