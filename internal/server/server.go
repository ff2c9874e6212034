// Package server exposes an editing session over HTTP.
//
// The service owns one [interact.Machine] and its session. A browser front
// end forwards raw pointer and key events; the machine decides what they
// mean and every response carries the resulting interaction state, so the
// front end only renders. One mutex serialises all access to the session.
//
// # Routes
//
//	GET   /healthz
//	GET   /metrics
//	GET   /api/document             project file of the open document
//	PUT   /api/document             import a project file (422 when invalid)
//	POST  /api/stage                report the stage size in pixels
//	POST  /api/tool                 arm a placement tool
//	POST  /api/pointer/{phase}      down, move, up or leave
//	POST  /api/key                  key press
//	POST  /api/undo
//	POST  /api/context/{action}     delete, duplicate, lock, unlock or paste
//	PATCH /api/elements/{id}        edit element fields (409 when locked)
//	POST  /api/background           switch background or aspect ratio
//	POST  /api/icons                define a custom icon
//	GET   /api/legend
//	GET   /api/state
//	GET   /api/export.png           render the map (?pixelRatio=&fill=)
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/export"
	"github.com/matzehuels/meteomap/pkg/interact"
)

// maxProjectBytes bounds the size of an imported project.
const maxProjectBytes = 10 << 20

// ExportSettings are the defaults for /api/export.png.
type ExportSettings struct {
	Width      int
	PixelRatio float64
	Fill       string
}

// Server serves one editing session.
type Server struct {
	mu      sync.Mutex
	machine *interact.Machine

	rasterizer export.Rasterizer
	export     ExportSettings
	metrics    http.Handler
	logger     *log.Logger
	clock      clockwork.Clock

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRasterizer replaces the built-in PNG rasterizer.
func WithRasterizer(r export.Rasterizer) Option {
	return func(s *Server) { s.rasterizer = r }
}

// WithExport sets the export defaults.
func WithExport(e ExportSettings) Option {
	return func(s *Server) { s.export = e }
}

// WithMetricsHandler serves h on /metrics instead of the default registry.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithClock sets the clock used to stamp project files.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// New creates a server driving m.
func New(m *interact.Machine, opts ...Option) *Server {
	s := &Server{
		machine:    m,
		rasterizer: export.NewRasterizer(),
		export: ExportSettings{
			Width:      export.DefaultWidth,
			PixelRatio: export.DefaultPixelRatio,
			Fill:       export.DefaultFill,
		},
		metrics: promhttp.Handler(),
		logger:  log.New(io.Discard),
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/document", s.handleGetDocument)
		r.Put("/document", s.handlePutDocument)
		r.Post("/stage", s.handleStage)
		r.Post("/tool", s.handleTool)
		r.Post("/pointer/{phase}", s.handlePointer)
		r.Post("/key", s.handleKey)
		r.Post("/undo", s.handleUndo)
		r.Post("/context/{action}", s.handleContext)
		r.Patch("/elements/{id}", s.handlePatchElement)
		r.Post("/background", s.handleBackground)
		r.Post("/icons", s.handleAddIcon)
		r.Get("/legend", s.handleLegend)
		r.Get("/state", s.handleState)
		r.Get("/export.png", s.handleExport)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Snapshot returns the current document. It matches autosave.Source so the
// autosaver reads the session under the same lock as requests.
func (s *Server) Snapshot(context.Context) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Session().Document(), nil
}

// Run serves on addr until ctx is cancelled, then drains connections for up
// to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
