package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// SessionName is the cookie session name.
const SessionName = "authflow"

const (
	keyAudience      = "aud"
	keyEmail         = "email"
	keyAuthenticated = "authenticated"
)

// RememberMaxAge is the cookie lifetime when "remember me" is ticked.
const RememberMaxAge = 30 * 24 * 60 * 60

// Store is the subset of sessions.Store used here.
type Store interface {
	Get(r *http.Request, name string) (*sessions.Session, error)
	New(r *http.Request, name string) (*sessions.Session, error)
	Save(r *http.Request, w http.ResponseWriter, s *sessions.Session) error
}

// Sessions keeps the signed-in principal and the notice audience id in a
// cookie session.
type Sessions struct {
	store  Store
	logger *zap.Logger
}

// NewCookieSessions returns cookie-backed sessions keyed from master.
func NewCookieSessions(master []byte, secure bool, log *zap.Logger) *Sessions {
	st := sessions.NewCookieStore(DeriveKey(master, PurposeCookieAuth), DeriveKey(master, PurposeCookieEnc))
	st.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewSessions(st, log)
}

// NewSessions wraps an existing store.
func NewSessions(store Store, log *zap.Logger) *Sessions {
	return &Sessions{store: store, logger: logger(log)}
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	// An undecodable cookie (e.g. after a key rotation) still yields a fresh session.
	sess, err := s.store.Get(r, SessionName)
	if err != nil {
		s.logger.Debug("discarding session cookie", zap.Error(err))
	}
	if sess == nil {
		sess = sessions.NewSession(s.store, SessionName)
		sess.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	}
	return sess
}

// Audience returns the id notices for this browser are addressed to,
// creating it on first use.
func (s *Sessions) Audience(w http.ResponseWriter, r *http.Request) string {
	sess := s.session(r)
	if aud, ok := sess.Values[keyAudience].(string); ok && aud != "" {
		return aud
	}
	aud := uuid.NewString()
	sess.Values[keyAudience] = aud
	if err := s.store.Save(r, w, sess); err != nil {
		s.logger.Warn("save session", zap.Error(err))
	}
	return aud
}

// SignIn records email as the signed-in principal. With remember set the
// cookie outlives the browser session.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, email string, remember bool) error {
	sess := s.session(r)
	sess.Values[keyEmail] = email
	sess.Values[keyAuthenticated] = true
	if remember {
		sess.Options.MaxAge = RememberMaxAge
	} else {
		sess.Options.MaxAge = 0
	}
	return s.store.Save(r, w, sess)
}

// SignOut forgets the principal but keeps the audience id.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	delete(sess.Values, keyEmail)
	sess.Values[keyAuthenticated] = false
	sess.Options.MaxAge = 0
	return s.store.Save(r, w, sess)
}

// CurrentUser returns the signed-in email.
func (s *Sessions) CurrentUser(r *http.Request) (string, bool) {
	sess := s.session(r)
	authenticated, _ := sess.Values[keyAuthenticated].(bool)
	email, _ := sess.Values[keyEmail].(string)
	if !authenticated || email == "" {
		return "", false
	}
	return email, true
}

// Middleware sends visitors without a session to the login page.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.CurrentUser(r); !ok {
			http.Redirect(w, r, PathLogin, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
