package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/harrylevesque/authflow/internal/form"
	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Template names, one per screen.
const (
	tmplLogin          = "login.html"
	tmplRegistration   = "registration.html"
	tmplForgotPassword = "forgot_password.html"
	tmplResetPassword  = "reset_password.html"
	tmplDashboard      = "dashboard.html"
)

var screenTemplates = []string{tmplLogin, tmplRegistration, tmplForgotPassword, tmplResetPassword, tmplDashboard}

// view is the data every page template receives.
type view struct {
	Title   string
	Action  string
	PageID  string
	Submit  string
	Pending string
	State   form.State
	// Precondition replaces the form with a terminal error.
	Precondition string
	Notices      []noticeView
	User         string
	Year         int
}

type noticeView struct {
	Kind  notify.Kind
	Title string
	Body  template.HTML
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages  map[string]*template.Template
	policy *bluemonday.Policy
}

// NewRenderer parses the layout once and each screen on top of a clone of it.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(template.FuncMap{
		"inputType": inputType,
	}).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(screenTemplates)),
		policy: bluemonday.UGCPolicy(),
	}
	for _, name := range screenTemplates {
		base, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		t, err := base.ParseFS(templatesFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) notices(ns []notify.Notice) []noticeView {
	out := make([]noticeView, 0, len(ns))
	for _, n := range ns {
		out = append(out, noticeView{
			Kind:  n.Kind,
			Title: n.Title,
			// Sanitized by the UGC policy before being trusted as markup.
			Body: template.HTML(r.policy.Sanitize(n.Body)),
		})
	}
	return out
}

// Render writes page name with status. Output is buffered so a template
// error still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, v *view) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if v.Year == 0 {
		v.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func inputType(t schema.FieldType) string {
	if t == schema.TypeBoolean {
		return "checkbox"
	}
	return string(t)
}
