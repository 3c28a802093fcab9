package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

// MsgMissingToken is shown in place of the reset form.
const MsgMissingToken = "No reset token found. Please request a new password reset link."

// MissingTokenNotice accompanies MsgMissingToken.
func MissingTokenNotice() notify.Notice {
	return notify.Error("Invalid or missing password reset token.",
		"If you followed a link, it might be expired or incorrect.")
}

// ResetPassword gates the reset form on a token and accepts every submission.
type ResetPassword struct {
	Tokens  *TokenIssuer
	Remote  Remote
	Latency time.Duration
	Logger  *zap.Logger
}

// Open checks the page precondition. Without a token it returns a
// MissingPrecondition error and no form may be shown. Any non-empty token is
// accepted; tokens signed by this service are logged with their subject.
func (r *ResetPassword) Open(token string) (form.Handler, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, utils.MissingPrecondition(MsgMissingToken)
	}

	log := logger(r.Logger)
	if r.Tokens != nil {
		if claims, err := r.Tokens.Inspect(token); err == nil {
			log = log.With(zap.String("subject", utils.MaskEmail(claims.Subject)), zap.String("token_id", claims.ID))
		} else {
			log = log.With(zap.String("token", "opaque"))
		}
	}
	log.Debug("reset form opened")

	return form.HandlerFunc(func(ctx context.Context, v schema.Values) (form.Result, error) {
		if err := remote(r.Remote).Call(ctx, r.Latency); err != nil {
			return form.Result{}, err
		}
		log.Info("password reset accepted")
		n := notify.Success("Password Reset Successful!",
			"Your password has been updated. You can now log in with your new password.")
		return form.Result{
			Kind:       form.KindSuccess,
			RedirectTo: PathLogin,
			Notice:     &n,
		}, nil
	}), nil
}
