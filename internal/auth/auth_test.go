package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

var testKey = DeriveKey(make([]byte, 32), PurposeResetToken)

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(map[string]string{"user@example.com": "password123"}, bcrypt.MinCost)
	require.NoError(t, err)
	return d
}

func TestLoginSubmit(t *testing.T) {
	h := &Login{Directory: newDirectory(t)}

	tests := []struct {
		name     string
		email    string
		password string
		remember string
		ok       bool
	}{
		{"fixture pair", "user@example.com", "password123", "", true},
		{"fixture pair remembered", "user@example.com", "password123", "true", true},
		{"wrong password", "user@example.com", "password1234", "", false},
		{"unknown email", "other@example.com", "password123", "", false},
		{"case differs", "User@example.com", "password123", "", false},
		{"reserved email", "test@example.com", "password123", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Submit(context.Background(), schema.Values{
				schema.FieldEmail:      tt.email,
				schema.FieldPassword:   tt.password,
				schema.FieldRememberMe: tt.remember,
			})
			require.NoError(t, err)
			if tt.ok {
				assert.Equal(t, form.KindSuccess, res.Kind)
				assert.Equal(t, PathDashboard, res.RedirectTo)
				assert.Equal(t, tt.email, res.Principal)
				assert.Equal(t, tt.remember == "true", res.Remember)
				return
			}
			assert.Equal(t, form.KindFailure, res.Kind)
			assert.Equal(t, "Invalid email or password. Please try again.", res.Message)
			assert.Empty(t, res.RedirectTo)
			assert.Empty(t, res.Principal)
		})
	}
}

func TestRegistrationSubmit(t *testing.T) {
	h := NewRegistration([]string{"test@example.com"})

	res, err := h.Submit(context.Background(), schema.Values{schema.FieldEmail: "test@example.com"})
	require.NoError(t, err)
	assert.Equal(t, form.KindFailure, res.Kind)
	assert.Equal(t, "An account with this email already exists. Please try a different email or log in.", res.Message)
	assert.Equal(t, []string{schema.FieldEmail}, res.Reset)
	assert.Empty(t, res.RedirectTo)

	for _, email := range []string{"new@example.com", "user@example.com", "test@example.org"} {
		res, err := h.Submit(context.Background(), schema.Values{schema.FieldEmail: email})
		require.NoError(t, err)
		assert.Equal(t, form.KindSuccess, res.Kind, email)
		assert.Equal(t, PathLogin, res.RedirectTo)
		require.NotNil(t, res.Notice)
		assert.Equal(t, "Registration successful!", res.Notice.Title)
	}
}

func TestForgotPasswordOutcomes(t *testing.T) {
	for _, ok := range []bool{true, false} {
		t.Run(map[bool]string{true: "success", false: "failure"}[ok], func(t *testing.T) {
			tokens := NewTokenIssuer(testKey, time.Hour)
			h := &ForgotPassword{Tokens: tokens, Outcome: Always(ok), BaseURL: "http://localhost:8080/"}

			res, err := h.Submit(context.Background(), schema.Values{schema.FieldEmail: "user@example.com"})
			require.NoError(t, err)
			assert.Empty(t, res.RedirectTo, "forgot password never navigates")
			if ok {
				assert.Equal(t, form.KindSuccess, res.Kind)
				assert.Equal(t, "Email Sent", res.Title)
				assert.True(t, res.ResetAll)
				assert.Nil(t, res.Notice)
				return
			}
			assert.Equal(t, form.KindFailure, res.Kind)
			assert.Equal(t, "Request Failed", res.Title)
			assert.False(t, res.ResetAll)
		})
	}
}

func TestForgotPasswordExposesLink(t *testing.T) {
	h := &ForgotPassword{
		Tokens:      NewTokenIssuer(testKey, time.Hour),
		Outcome:     Always(true),
		BaseURL:     "http://localhost:8080",
		ExposeLinks: true,
	}
	res, err := h.Submit(context.Background(), schema.Values{schema.FieldEmail: "user@example.com"})
	require.NoError(t, err)
	require.NotNil(t, res.Notice)
	assert.Equal(t, notify.KindInfo, res.Notice.Kind)
	assert.Contains(t, res.Notice.Body, "http://localhost:8080/reset-password?token=")
}

func TestResetPasswordOpen(t *testing.T) {
	h := &ResetPassword{Tokens: NewTokenIssuer(testKey, time.Hour)}

	for _, token := range []string{"", "   "} {
		handler, err := h.Open(token)
		assert.Nil(t, handler)
		require.Error(t, err)
		assert.True(t, utils.IsKind(err, utils.KindPrecondition))
		assert.Contains(t, err.Error(), MsgMissingToken)
	}

	issued, err := h.Tokens.Issue("user@example.com")
	require.NoError(t, err)
	for _, token := range []string{"opaque-token", issued} {
		handler, err := h.Open(token)
		require.NoError(t, err)
		res, err := handler.Submit(context.Background(), schema.Values{
			schema.FieldNewPassword:     "newpassword",
			schema.FieldConfirmPassword: "newpassword",
		})
		require.NoError(t, err)
		assert.Equal(t, form.KindSuccess, res.Kind)
		assert.Equal(t, PathLogin, res.RedirectTo)
		require.NotNil(t, res.Notice)
		assert.Equal(t, "Password Reset Successful!", res.Notice.Title)
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testKey, time.Hour)
	token, err := issuer.Issue("user@example.com")
	require.NoError(t, err)

	claims, err := issuer.Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	other := NewTokenIssuer(DeriveKey(testKey, "other"), time.Hour)
	_, err = other.Inspect(token)
	assert.Error(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Inspect(token)
	assert.Error(t, err)
}

func TestResetLinkEscapesToken(t *testing.T) {
	link := ResetLink("https://auth.example.com/", "a+b/c")
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	assert.Equal(t, "a+b/c", u.Query().Get("token"))
}

func TestSimulatorHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Simulator{}.Call(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Simulator{}.Call(context.Background(), 0))
	assert.NoError(t, Simulator{}.Call(context.Background(), time.Millisecond))
}

func TestHandlersPropagateRemoteErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Login{Directory: newDirectory(t), Latency: time.Hour}).Submit(ctx, schema.Values{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = (&Registration{Latency: time.Hour}).Submit(ctx, schema.Values{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectoryLookup(t *testing.T) {
	d := newDirectory(t)
	acct, err := d.Lookup("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", acct.Email)
	_, err = d.Lookup("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
