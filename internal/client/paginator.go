package client

import (
	"context"
	"fmt"

	"sportsync/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// DefaultMaxPages bounds any single paginated walk.
const DefaultMaxPages = 500

// PageRules is the provider-specific view of one page payload.
//
// ok reports whether the page signals success and carries the expected
// collection; a page that is not ok ends the walk without being yielded.
// next is the URL of the following page, or "" on the last page.
type PageRules interface {
	Inspect(body []byte) (ok bool, next string, err error)
}

// PageRulesFunc adapts a function to PageRules.
type PageRulesFunc func(body []byte) (bool, string, error)

func (f PageRulesFunc) Inspect(body []byte) (bool, string, error) { return f(body) }

// Paginator walks a cursor-linked sequence of pages. It is single use:
//
//	p := client.Paginate(f, seed, rules)
//	for p.Next(ctx) {
//		handle(p.Page())
//	}
//	if err := p.Err(); err != nil { ... }
type Paginator struct {
	fetcher  Fetcher
	rules    PageRules
	next     string
	seen     map[string]struct{}
	page     *Response
	pages    int
	err      error
	done     bool
	MaxPages int
}

// Paginate returns a Paginator starting at seedURL.
func Paginate(f Fetcher, seedURL string, rules PageRules) *Paginator {
	return &Paginator{
		fetcher:  f,
		rules:    rules,
		next:     seedURL,
		seen:     make(map[string]struct{}),
		MaxPages: DefaultMaxPages,
	}
}

// Next fetches the following page. It returns false once the sequence has
// ended, either normally or because of an error reported by Err.
func (p *Paginator) Next(ctx context.Context) bool {
	if p.done {
		return false
	}
	p.page = nil

	if p.next == "" {
		p.done = true
		return false
	}
	if p.MaxPages > 0 && p.pages >= p.MaxPages {
		log.Ctx(ctx).Warn().
			Int("max_pages", p.MaxPages).
			Str("next", RedactURL(p.next)).
			Msg("Pagination page limit reached, stopping")
		p.done = true
		return false
	}
	if _, dup := p.seen[p.next]; dup {
		log.Ctx(ctx).Warn().
			Str("next", RedactURL(p.next)).
			Msg("Pagination cursor repeats a visited page, stopping")
		p.done = true
		return false
	}
	p.seen[p.next] = struct{}{}

	resp, err := p.fetcher.Fetch(ctx, p.next)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}

	ok, next, err := p.rules.Inspect(resp.Body)
	if err != nil {
		p.err = fmt.Errorf("failed to inspect page %d of %s: %w", p.pages+1, RedactURL(resp.URL), err)
		p.done = true
		return false
	}
	if !ok {
		log.Ctx(ctx).Debug().
			Str("url", RedactURL(resp.URL)).
			Int("pages", p.pages).
			Msg("Page signalled end of data")
		p.done = true
		return false
	}

	metrics.RecordPage(hostOf(resp.URL))
	p.page = resp
	p.pages++
	p.next = next
	return true
}

// Page returns the page produced by the last successful call to Next.
func (p *Paginator) Page() *Response { return p.page }

// Pages returns the number of pages yielded so far.
func (p *Paginator) Pages() int { return p.pages }

// Err returns the error that terminated the walk, if any. Normal end of
// pages is not an error.
func (p *Paginator) Err() error { return p.err }

// Collect drains the paginator. Pages yielded before a failure are returned
// together with the error.
func (p *Paginator) Collect(ctx context.Context) ([]*Response, error) {
	var pages []*Response
	for p.Next(ctx) {
		pages = append(pages, p.Page())
	}
	return pages, p.Err()
}
