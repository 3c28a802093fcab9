// Package notify is the process-wide notice channel behind toast messages.
// Notices are append-only, fanned out to observers, and kept for a bounded
// display lifetime.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Kind classifies notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice is one transient message. Body may contain HTML; renderers sanitize it.
type Notice struct {
	ID       string
	Audience string
	Kind     Kind
	Title    string
	Body     string
	At       time.Time
}

// Success builds a success notice.
func Success(title, body string) Notice { return Notice{Kind: KindSuccess, Title: title, Body: body} }

// Info builds an info notice.
func Info(title, body string) Notice { return Notice{Kind: KindInfo, Title: title, Body: body} }

// Error builds an error notice.
func Error(title, body string) Notice { return Notice{Kind: KindError, Title: title, Body: body} }

// Publisher accepts notices.
type Publisher interface {
	Publish(n Notice) Notice
}

const (
	DefaultCapacity = 256
	DefaultTTL      = 10 * time.Second
)

// Bus stores recent notices and fans them out to observers.
type Bus struct {
	recent *expirable.LRU[string, Notice]
	now    func() time.Time

	mu        sync.Mutex
	observers map[int]func(Notice)
	nextID    int
}

// NewBus returns a bus keeping at most capacity notices for ttl each.
func NewBus(capacity int, ttl time.Duration) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Bus{
		recent:    expirable.NewLRU[string, Notice](capacity, nil, ttl),
		now:       time.Now,
		observers: make(map[int]func(Notice)),
	}
}

// Publish stamps n with an id and time, stores it and notifies observers.
func (b *Bus) Publish(n Notice) Notice {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = b.now()
	}
	if n.Kind == "" {
		n.Kind = KindInfo
	}
	b.recent.Add(n.ID, n)

	b.mu.Lock()
	fns := make([]func(Notice), 0, len(b.observers))
	for _, fn := range b.observers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
	return n
}

// Subscribe registers fn for every future notice. The returned func removes it.
func (b *Bus) Subscribe(fn func(Notice)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.observers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.observers, id)
			b.mu.Unlock()
		})
	}
}

// Recent returns unexpired notices for audience, oldest first.
func (b *Bus) Recent(audience string) []Notice {
	var out []Notice
	for _, n := range b.recent.Values() {
		if n.Audience == audience {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Take returns Recent(audience) and drops those notices from the bus.
func (b *Bus) Take(audience string) []Notice {
	out := b.Recent(audience)
	for _, n := range out {
		b.recent.Remove(n.ID)
	}
	return out
}

// Len reports how many notices are currently displayable.
func (b *Bus) Len() int {
	return b.recent.Len()
}
