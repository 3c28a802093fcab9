// Package form binds a validation schema to named fields and drives the
// submit state machine:
//
//	Idle → Validating → (Invalid → Idle | Valid → Submitting)
//	     → (Idle with error | Idle with success | Navigated)
//
// One Controller backs one mounted page. At most one submission is in flight
// per controller; results that resolve after Close are dropped.
package form

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/harrylevesque/authflow/internal/notify"
	"github.com/harrylevesque/authflow/internal/schema"
	"github.com/harrylevesque/authflow/internal/utils"
)

// ErrClosed is returned by Submit once the controller is closed or has navigated away.
var ErrClosed = errors.New("form closed")

var tracer = otel.Tracer("github.com/harrylevesque/authflow/internal/form")

// Option configures a Controller.
type Option func(*Controller)

// WithPublisher routes result notices to p, addressed to audience.
func WithPublisher(p notify.Publisher, audience string) Option {
	return func(c *Controller) {
		c.publisher = p
		c.audience = audience
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithValues seeds initial field values without marking them dirty.
func WithValues(v schema.Values) Option {
	return func(c *Controller) {
		for k, val := range v {
			if _, ok := c.schema.Field(k); ok {
				c.values[k] = val
			}
		}
	}
}

// Controller holds the state of one form instance.
type Controller struct {
	schema    *schema.Form
	handler   Handler
	publisher notify.Publisher
	audience  string
	logger    *zap.Logger

	mu         sync.Mutex
	values     schema.Values
	verdicts   schema.Results
	touched    map[string]bool
	dirty      map[string]bool
	submitting bool
	phase      Phase
	alert      *Alert
	redirect   string
	closed     bool
}

// New mounts a form for s whose valid submissions go to h.
func New(s *schema.Form, h Handler, opts ...Option) *Controller {
	c := &Controller{
		schema:  s,
		handler: h,
		logger:  zap.NewNop(),
		values:  make(schema.Values, len(s.Fields)),
		touched: make(map[string]bool),
		dirty:   make(map[string]bool),
	}
	for _, name := range s.Names() {
		c.values[name] = ""
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("form", s.Name))
	c.verdicts = s.Validate(c.values)
	return c
}

// Schema returns the bound schema.
func (c *Controller) Schema() *schema.Form { return c.schema }

// SetField stores value and re-validates every field that depends on name.
// Unknown fields are ignored.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	deps := c.schema.Dependents(name)
	if len(deps) == 0 {
		return
	}
	c.values[name] = value
	c.dirty[name] = true
	for _, dep := range deps {
		c.verdicts[dep] = c.schema.ValidateField(dep, c.values)
	}
}

// Touch marks name as blurred so its error becomes visible.
func (c *Controller) Touch(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schema.Field(name); ok {
		c.touched[name] = true
	}
}

// Reset clears the named fields, or every field and the alert when none are named.
func (c *Controller) Reset(fields ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(fields) == 0 {
		c.alert = nil
		c.resetLocked(c.schema.Names())
		return
	}
	c.resetLocked(fields)
}

func (c *Controller) resetLocked(fields []string) {
	for _, name := range fields {
		if _, ok := c.schema.Field(name); !ok {
			continue
		}
		c.values[name] = ""
		delete(c.dirty, name)
		delete(c.touched, name)
	}
	for _, name := range fields {
		for _, dep := range c.schema.Dependents(name) {
			c.verdicts[dep] = c.schema.ValidateField(dep, c.values)
		}
	}
}

// Submit validates every field and, when the form is valid, runs the handler
// and applies its result. While a submission is in flight further calls
// return utils.ErrSubmitInFlight and change nothing. An invalid form returns
// a validation error and the handler is not called.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "form.submit",
		trace.WithAttributes(attribute.String("form.name", c.schema.Name)))
	defer span.End()

	c.mu.Lock()
	switch {
	case c.closed || c.phase == PhaseNavigated:
		c.mu.Unlock()
		return Result{}, ErrClosed
	case c.submitting:
		c.mu.Unlock()
		span.SetAttributes(attribute.Bool("form.in_flight", true))
		return Result{}, utils.ErrSubmitInFlight
	}

	c.verdicts = c.schema.Validate(c.values)
	for _, name := range c.schema.Names() {
		c.touched[name] = true
	}
	if !c.verdicts.Valid() {
		fields := c.verdicts.Errors()
		c.mu.Unlock()
		span.SetStatus(codes.Error, "invalid")
		return Result{}, utils.ValidationError(fields)
	}

	c.submitting = true
	c.phase = PhaseSubmitting
	c.alert = nil
	values := c.values.Clone()
	c.mu.Unlock()

	res, err := c.handler.Submit(ctx, values)

	c.mu.Lock()
	c.submitting = false
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("dropping result of closed form", zap.Stringer("kind", res.Kind))
		return Result{}, ErrClosed
	}
	c.phase = PhaseIdle
	if err != nil {
		c.alert = &Alert{
			Kind:    notify.KindError,
			Title:   "Something went wrong",
			Message: "The request could not be completed. Please try again.",
		}
		c.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("submission handler failed", zap.Error(err))
		return Result{}, err
	}
	c.applyLocked(res)
	c.mu.Unlock()

	span.SetAttributes(attribute.String("form.outcome", res.Kind.String()))
	if res.Notice != nil && c.publisher != nil {
		n := *res.Notice
		n.Audience = c.audience
		c.publisher.Publish(n)
	}
	c.logger.Debug("submission resolved",
		zap.Stringer("kind", res.Kind),
		zap.String("redirect", res.RedirectTo))
	return res, nil
}

func (c *Controller) applyLocked(res Result) {
	switch res.Kind {
	case KindSuccess:
		if res.Message != "" {
			c.alert = &Alert{Kind: notify.KindSuccess, Title: res.Title, Message: res.Message}
		}
		if res.RedirectTo != "" {
			c.phase = PhaseNavigated
			c.redirect = res.RedirectTo
		}
	default:
		c.alert = &Alert{Kind: notify.KindError, Title: res.Title, Message: res.Message}
	}
	if res.ResetAll {
		c.resetLocked(c.schema.Names())
	} else if len(res.Reset) > 0 {
		c.resetLocked(res.Reset)
	}
}

// Completion is the resolved value of SubmitAsync.
type Completion struct {
	Result Result
	Err    error
}

// SubmitAsync runs Submit on its own goroutine. The channel yields exactly
// one Completion and is then closed.
func (c *Controller) SubmitAsync(ctx context.Context) <-chan Completion {
	ch := make(chan Completion, 1)
	go func() {
		defer close(ch)
		res, err := c.Submit(ctx)
		ch <- Completion{Result: res, Err: err}
	}()
	return ch
}

// Close unmounts the form. A submission still in flight resolves into nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// State returns a snapshot of the form.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Form:       c.schema.Name,
		Valid:      c.verdicts.Valid(),
		Submitting: c.submitting,
		Phase:      c.phase,
		RedirectTo: c.redirect,
		Closed:     c.closed,
	}
	if c.alert != nil {
		a := *c.alert
		st.Alert = &a
	}
	for _, f := range c.schema.Fields {
		st.Fields = append(st.Fields, FieldState{
			Field:   f,
			Value:   c.values[f.Name],
			Verdict: c.verdicts[f.Name],
			Touched: c.touched[f.Name],
			Dirty:   c.dirty[f.Name],
		})
	}
	return st
}
