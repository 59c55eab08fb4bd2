// Package server exposes the arrangement pipeline over HTTP.
//
// # Endpoints
//
//	GET    /healthz            liveness check
//	GET    /version            build information
//	POST   /v1/arrange         arrange a document statelessly, respond with ?format=
//	POST   /v1/grids           create a grid, respond with its id
//	GET    /v1/grids           list grid ids
//	PUT    /v1/grids/{id}      arrange a document inside a grid
//	GET    /v1/grids/{id}      last successful arrangement of a grid
//	DELETE /v1/grids/{id}      forget a grid
//
// Documents are sent as JSON, or as TOML with a Content-Type containing
// "toml". Errors are JSON objects with a code and a message; engine failures
// answer 422 and leave the grid's previous arrangement readable.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/trackgrid/pkg/document"
	"github.com/matzehuels/trackgrid/pkg/grid"
	"github.com/matzehuels/trackgrid/pkg/pipeline"
)

// DefaultMaxBodyBytes limits request documents.
const DefaultMaxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Config wires the server to its collaborators.
type Config struct {
	Runner   *pipeline.Runner
	Registry *grid.Registry
	Logger   *log.Logger

	// MaxBodyBytes limits request bodies. Zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Server holds the HTTP state. The arrangers live in the registry; the
// server remembers the document of each grid's last successful pass so the
// arrangement can be served with its labels.
type Server struct {
	runner   *pipeline.Runner
	registry *grid.Registry
	logger   *log.Logger
	maxBody  int64

	mu   sync.RWMutex
	docs map[grid.GridID]*document.Document
}

// New creates the server with defaults for nil collaborators.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Registry == nil {
		cfg.Registry = grid.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		runner:   cfg.Runner,
		registry: cfg.Registry,
		logger:   cfg.Logger,
		maxBody:  cfg.MaxBodyBytes,
		docs:     make(map[grid.GridID]*document.Document),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/arrange", s.handleArrange)
		r.Route("/grids", func(r chi.Router) {
			r.Post("/", s.handleCreateGrid)
			r.Get("/", s.handleListGrids)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.handlePutGrid)
				r.Get("/", s.handleGetGrid)
				r.Delete("/", s.handleDeleteGrid)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    "METHOD_NOT_ALLOWED",
			Message: r.Method + " is not allowed on " + r.URL.Path,
		})
	})
	return r
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
