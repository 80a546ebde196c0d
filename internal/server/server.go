// Package server serves the browser sandbox and a small JSON API.
//
// A browser gets its own [sandbox.Sandbox], keyed by a UUID cookie, once it
// submits a photo page; until then it sees the shared default image.
// Routes:
//
//	GET  /              sandbox page (parameters come from the query string)
//	POST /source        resolve a new photo page, then redirect to /
//	POST /reset         forget the caller's sandbox
//	GET  /api/srcset    srcset.Result as JSON
//	GET  /api/resolve   {"image_url": ...} for ?url=
//	GET  /healthz       liveness check
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
	"github.com/matzehuels/srcsetlab/pkg/sandbox"
)

const (
	// DefaultRequestTimeout bounds each request, lookups included.
	DefaultRequestTimeout = 30 * time.Second

	cookieName      = "srcsetlab_sandbox"
	shutdownTimeout = 5 * time.Second
	cleanupInterval = 10 * time.Minute
	defaultRetry    = time.Minute
)

// Options configures a Server.
type Options struct {
	Resolver       unsplash.Resolver
	Logger         *log.Logger
	Defaults       imgparams.Params // initial parameters of new sandboxes
	Source         string           // initial photo page, DefaultSourceURL if empty
	RequestTimeout time.Duration
	IdleTTL        time.Duration // sandbox eviction, see sandbox.NewStore
}

// Server is an http.Handler for the sandbox UI and API.
type Server struct {
	resolver unsplash.Resolver
	logger   *log.Logger
	store    *sandbox.Store
	defaults imgparams.Params
	source   string
	router   chi.Router
	now      func() time.Time

	// initial holds the default image shown before a visitor has a sandbox.
	initial      *sandbox.Sandbox
	initialMu    sync.Mutex
	initialTried time.Time
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Defaults == (imgparams.Params{}) {
		opts.Defaults = imgparams.Defaults("")
	}
	if opts.Source == "" {
		opts.Source = imgparams.DefaultSourceURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		resolver: opts.Resolver,
		logger:   opts.Logger,
		store:    sandbox.NewStore(opts.Resolver, opts.Logger, opts.IdleTTL),
		defaults: opts.Defaults.WithBaseURL(""),
		source:   opts.Source,
		now:      time.Now,
		initial:  sandbox.New(opts.Resolver, opts.Logger),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/", s.handlePage)
	r.Post("/source", s.handleSource)
	r.Post("/reset", s.handleReset)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/srcset", s.handleSrcset)
		r.Get("/resolve", s.handleResolve)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. The bound address is reported through ready when non-nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr())
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.janitor(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Cleanup(); n > 0 {
				s.logger.Debug("evicted idle sandboxes", "count", n, "live", s.store.Len())
			}
		}
	}
}
