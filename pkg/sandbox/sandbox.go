// Package sandbox holds the mutable state of one interactive srcset session:
// the photo page the user typed, the image URL it resolved to and the
// current parameter set.
//
// Lookups are asynchronous and may finish out of order. Every lookup takes a
// [Ticket] from a monotonically increasing generation counter and its result
// is applied only while that ticket is still the newest one, so a slow
// response for an old page can never replace the image of a newer one.
// Failed lookups leave the previous image in place.
package sandbox

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
	"github.com/matzehuels/srcsetlab/pkg/observability"
)

// Ticket identifies one lookup. Tickets compare by generation only.
type Ticket struct {
	Generation uint64
	Source     string
}

// Sandbox is safe for concurrent use.
type Sandbox struct {
	resolver unsplash.Resolver
	logger   *log.Logger

	mu       sync.Mutex
	gen      uint64
	source   string
	imageURL string
	params   imgparams.Params
}

// New creates an empty sandbox. A nil logger discards output.
func New(resolver unsplash.Resolver, logger *log.Logger) *Sandbox {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Sandbox{
		resolver: resolver,
		logger:   logger,
		params:   imgparams.Defaults(""),
	}
}

// ImageURL returns the last successfully resolved image URL, or "".
func (s *Sandbox) ImageURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageURL
}

// Source returns the most recently submitted page URL.
func (s *Sandbox) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Generation returns the number of lookups started so far.
func (s *Sandbox) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Params returns the current parameters with BaseURL set to the image URL.
func (s *Sandbox) Params() imgparams.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.WithBaseURL(s.imageURL)
}

// SetParams replaces the current parameters. p.BaseURL is ignored.
func (s *Sandbox) SetParams(p imgparams.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p.WithBaseURL("")
}

// Begin starts a lookup for source and supersedes all earlier tickets.
func (s *Sandbox) Begin(source string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.source = source
	return Ticket{Generation: s.gen, Source: source}
}

// Complete applies the outcome of the lookup identified by t. It reports
// whether the image URL changed. Errors and stale tickets are dropped.
func (s *Sandbox) Complete(t Ticket, imageURL string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Generation != s.gen {
		s.logger.Debug("discarding stale lookup", "source", t.Source, "generation", t.Generation, "current", s.gen)
		observability.Lookup().OnLookupDiscarded(context.Background(), t.Source, t.Generation)
		return false
	}
	if err != nil {
		s.logger.Debug("lookup failed", "source", t.Source, "err", err)
		return false
	}
	s.imageURL = imageURL
	return true
}

// Resolve runs the lookup for t without touching sandbox state.
func (s *Sandbox) Resolve(ctx context.Context, t Ticket) (string, error) {
	return s.resolver.ResolveImageURL(ctx, t.Source)
}

// Submit resolves source and applies the result, reporting whether the
// image URL changed.
func (s *Sandbox) Submit(ctx context.Context, source string) bool {
	t := s.Begin(source)
	imageURL, err := s.Resolve(ctx, t)
	return s.Complete(t, imageURL, err)
}
