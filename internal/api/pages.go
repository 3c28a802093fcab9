package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/harrylevesque/authflow/internal/form"
)

// Page is one mounted screen: a form controller reachable through the page
// id rendered into the form.
type Page struct {
	ID       string
	Screen   string
	Audience string
	Form     *form.Controller
}

// Pages holds mounted pages. A page leaving the registry, by TTL, capacity
// or Drop, is unmounted and its in-flight result discarded.
type Pages struct {
	lru *expirable.LRU[string, *Page]
}

// NewPages returns a registry holding at most size pages for ttl each.
func NewPages(size int, ttl time.Duration) *Pages {
	if size <= 0 {
		size = 4096
	}
	return &Pages{
		lru: expirable.NewLRU[string, *Page](size, func(_ string, p *Page) {
			p.Form.Close()
		}, ttl),
	}
}

// Mount registers c for screen and audience under a fresh id.
func (p *Pages) Mount(screen, audience string, c *form.Controller) *Page {
	page := &Page{ID: uuid.NewString(), Screen: screen, Audience: audience, Form: c}
	p.lru.Add(page.ID, page)
	return page
}

// Get returns the page for id when it belongs to screen and audience.
func (p *Pages) Get(id, screen, audience string) (*Page, bool) {
	if id == "" {
		return nil, false
	}
	page, ok := p.lru.Get(id)
	if !ok || page.Screen != screen || page.Audience != audience {
		return nil, false
	}
	return page, true
}

// Drop unmounts the page for id.
func (p *Pages) Drop(id string) {
	p.lru.Remove(id)
}

// Len reports the number of mounted pages.
func (p *Pages) Len() int {
	return p.lru.Len()
}
