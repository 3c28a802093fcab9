package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/harrylevesque/authflow/internal/auth"
	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

const fieldPageID = "page_id"

// screen describes one auth page.
type screen struct {
	name     string
	title    string
	template string
	submit   string
	pending  string
	schema   func() *schema.Form
	// open returns the submission handler for the request, or a
	// MissingPrecondition error when the page cannot show its form.
	open func(r *http.Request) (form.Handler, error)
}

func fixed(h form.Handler) func(*http.Request) (form.Handler, error) {
	return func(*http.Request) (form.Handler, error) { return h, nil }
}

// Server serves the auth screens.
type Server struct {
	logger   *zap.Logger
	sessions *auth.Sessions
	bus      *notify.Bus
	pages    *Pages
	render   *Renderer
	base     context.Context

	login, registration, forgotPassword, resetPassword screen
}

// Deps are the collaborators of a Server.
type Deps struct {
	Logger         *zap.Logger
	Sessions       *auth.Sessions
	Bus            *notify.Bus
	Pages          *Pages
	Login          form.Handler
	Registration   form.Handler
	ForgotPassword form.Handler
	ResetPassword  *auth.ResetPassword
	// BaseContext bounds submissions; cancelling it aborts pending calls on shutdown.
	BaseContext context.Context
}

// NewServer builds the screens around d.
func NewServer(d Deps) (*Server, error) {
	render, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.BaseContext == nil {
		d.BaseContext = context.Background()
	}
	s := &Server{
		logger:   d.Logger,
		sessions: d.Sessions,
		bus:      d.Bus,
		pages:    d.Pages,
		render:   render,
		base:     d.BaseContext,
	}
	s.login = screen{
		name: "login", title: "Sign in to your account", template: tmplLogin,
		submit: "Sign In", pending: "Please wait",
		schema: schema.Login, open: fixed(d.Login),
	}
	s.registration = screen{
		name: "registration", title: "Create your account", template: tmplRegistration,
		submit: "Create Account", pending: "Creating account...",
		schema: schema.Registration, open: fixed(d.Registration),
	}
	s.forgotPassword = screen{
		name: "forgot-password", title: "Forgot Your Password?", template: tmplForgotPassword,
		submit: "Send Reset Link", pending: "Sending...",
		schema: schema.ForgotPassword, open: fixed(d.ForgotPassword),
	}
	s.resetPassword = screen{
		name: "reset-password", title: "Reset Your Password", template: tmplResetPassword,
		submit: "Reset Password", pending: "Resetting...",
		schema: schema.ResetPassword,
		open: func(r *http.Request) (form.Handler, error) {
			return d.ResetPassword.Open(r.URL.Query().Get("token"))
		},
	}
	return s, nil
}

// mount opens sc and registers a fresh controller for it.
func (s *Server) mount(r *http.Request, sc screen, audience string) (*Page, error) {
	h, err := sc.open(r)
	if err != nil {
		return nil, err
	}
	c := form.New(sc.schema(), h,
		form.WithPublisher(s.bus, audience),
		form.WithLogger(s.logger.Named("form")),
	)
	return s.pages.Mount(sc.name, audience, c), nil
}

func (s *Server) show(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aud := s.sessions.Audience(w, r)
		page, err := s.mount(r, sc, aud)
		if err != nil {
			s.precondition(w, r, sc, aud, err)
			return
		}
		s.page(w, r, http.StatusOK, sc, page)
	}
}

func (s *Server) submit(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aud := s.sessions.Audience(w, r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}

		page, ok := s.pages.Get(r.PostForm.Get(fieldPageID), sc.name, aud)
		if !ok {
			// Expired or foreign page id: mount a new instance and submit that.
			var err error
			if page, err = s.mount(r, sc, aud); err != nil {
				s.precondition(w, r, sc, aud, err)
				return
			}
		}

		log := s.logger.With(zap.String("screen", sc.name), zap.String("page", page.ID))
		if page.Form.State().Submitting {
			// A repeated submit leaves the in-flight values untouched.
			log.Debug("submission already in flight")
			s.page(w, r, http.StatusConflict, sc, page)
			return
		}
		bind(page.Form, r)

		ctx, cancel := s.submissionContext(r)
		defer cancel()
		res, err := page.Form.Submit(ctx)

		switch {
		case errors.Is(err, utils.ErrSubmitInFlight):
			log.Debug("submission already in flight")
			s.page(w, r, http.StatusConflict, sc, page)
		case errors.Is(err, form.ErrClosed):
			if to := page.Form.State().RedirectTo; to != "" {
				http.Redirect(w, r, to, http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
		case err != nil:
			s.page(w, r, utils.StatusCode(err), sc, page)
		case res.Kind == form.KindSuccess && res.RedirectTo != "":
			if res.Principal != "" {
				if err := s.sessions.SignIn(w, r, res.Principal, res.Remember); err != nil {
					log.Error("sign in", zap.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}
			s.pages.Drop(page.ID)
			http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
		default:
			if err := res.Err(); err != nil {
				log.Info("submission failed", zap.Error(err))
			}
			s.page(w, r, http.StatusOK, sc, page)
		}
	}
}

// bind copies posted fields into the controller and marks them touched.
// An unticked checkbox is absent from the body and binds as "".
func bind(c *form.Controller, r *http.Request) {
	for _, f := range c.Schema().Fields {
		v := r.PostForm.Get(f.Name)
		if f.Type == schema.TypeBoolean && v != "" {
			v = "true"
		}
		c.SetField(f.Name, v)
		c.Touch(f.Name)
	}
}

// submissionContext survives the client going away but not server shutdown.
func (s *Server) submissionContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	stop := context.AfterFunc(s.base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Server) precondition(w http.ResponseWriter, r *http.Request, sc screen, aud string, err error) {
	var coded *utils.CodedError
	if !errors.As(err, &coded) || coded.Kind != utils.KindPrecondition {
		s.logger.Error("open screen", zap.String("screen", sc.name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	n := auth.MissingTokenNotice()
	n.Audience = aud
	s.bus.Publish(n)
	s.write(w, coded.Code, sc.template, &view{
		Title:        sc.title,
		Precondition: coded.Message,
		Notices:      s.render.notices(s.bus.Take(aud)),
	})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, sc screen, page *Page) {
	s.write(w, status, sc.template, &view{
		Title:   sc.title,
		Action:  r.URL.RequestURI(),
		PageID:  page.ID,
		Submit:  sc.submit,
		Pending: sc.pending,
		State:   page.Form.State(),
		Notices: s.render.notices(s.bus.Take(page.Audience)),
	})
}

func (s *Server) write(w http.ResponseWriter, status int, tmpl string, v *view) {
	if err := s.render.Render(w, status, tmpl, v); err != nil {
		s.logger.Error("render", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	aud := s.sessions.Audience(w, r)
	email, _ := s.sessions.CurrentUser(r)
	s.write(w, http.StatusOK, tmplDashboard, &view{
		Title:   "Welcome to Your Dashboard!",
		User:    email,
		Notices: s.render.notices(s.bus.Take(aud)),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	aud := s.sessions.Audience(w, r)
	if err := s.sessions.SignOut(w, r); err != nil {
		s.logger.Error("sign out", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	n := notify.Info("Signed out", "You have been logged out.")
	n.Audience = aud
	s.bus.Publish(n)
	http.Redirect(w, r, auth.PathLogin, http.StatusSeeOther)
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK\n"))
}
