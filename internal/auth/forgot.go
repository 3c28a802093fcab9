package auth

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

// PathResetPassword is where reset links point.
const PathResetPassword = "/reset-password"

const (
	msgResetSent   = "If an account exists for this email, a password reset link has been sent. Please check your inbox."
	msgResetFailed = "Failed to send reset link. Please try again or contact support if the issue persists."
)

// ForgotPassword issues a reset link. Delivery is simulated: the link is
// logged, and shown as a notice when ExposeLinks is set. Neither outcome
// navigates.
type ForgotPassword struct {
	Tokens      *TokenIssuer
	Outcome     Outcome
	BaseURL     string
	ExposeLinks bool
	Remote      Remote
	Latency     time.Duration
	Logger      *zap.Logger
}

func (f *ForgotPassword) Submit(ctx context.Context, v schema.Values) (form.Result, error) {
	if err := remote(f.Remote).Call(ctx, f.Latency); err != nil {
		return form.Result{}, err
	}
	email := v[schema.FieldEmail]
	log := logger(f.Logger).With(zap.String("email", utils.MaskEmail(email)))

	outcome := f.Outcome
	if outcome == nil {
		outcome = RandomOutcome(0.7)
	}
	if !outcome() {
		log.Warn("reset link delivery failed")
		return form.Failure("Request Failed", msgResetFailed), nil
	}

	res := form.Result{
		Kind:     form.KindSuccess,
		Title:    "Email Sent",
		Message:  msgResetSent,
		ResetAll: true,
	}
	if f.Tokens == nil {
		return res, nil
	}

	token, err := f.Tokens.Issue(email)
	if err != nil {
		return form.Result{}, err
	}
	link := ResetLink(f.BaseURL, token)
	log.Info("reset link issued", zap.String("link", link))
	if f.ExposeLinks {
		n := notify.Info("Simulated email",
			fmt.Sprintf(`Reset link for %s: <a href="%s">open reset page</a>`, html.EscapeString(email), html.EscapeString(link)))
		res.Notice = &n
	}
	return res, nil
}

// ResetLink builds the reset page URL carrying token.
func ResetLink(baseURL, token string) string {
	q := url.Values{"token": {token}}
	return strings.TrimRight(baseURL, "/") + PathResetPassword + "?" + q.Encode()
}
