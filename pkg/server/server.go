// Package server exposes a generated graph over HTTP.
//
// Routes:
//
//	GET /healthz                   liveness probe and build version
//	GET /graph                     parameters and edge statistics
//	GET /parents/{node}?layer=L    parent vector of node on layer L
//	GET /dot?layer=L               Graphviz source of layer L
//	GET /metrics                   Prometheus metrics
//
// The graph is immutable, so handlers share it without locking.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/zigzag/pkg/buildinfo"
	zerrors "github.com/matzehuels/zigzag/pkg/errors"
	"github.com/matzehuels/zigzag/pkg/graph"
	"github.com/matzehuels/zigzag/pkg/render/nodelink"
)

// MaxDOTNodes bounds the graphs /dot renders.
const MaxDOTNodes = 1 << 10

// Options configure a [Server].
type Options struct {
	// Logger receives one line per request. Defaults to log.Default().
	Logger *log.Logger

	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler

	// RequestTimeout bounds each request. Defaults to 30s.
	RequestTimeout time.Duration
}

// Server answers parent queries for one graph.
type Server struct {
	g      *graph.Graph
	opts   Options
	router chi.Router
}

// New creates a server for g.
func New(g *graph.Graph, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{g: g, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/parents/{node}", s.handleParents)
	r.Get("/dot", s.handleDOT)
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr, "graph", s.g.Params())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type graphResponse struct {
	Params graph.Params `json:"params"`
	Stats  graph.Stats  `json:"stats"`
}

type parentsResponse struct {
	Node      int             `json:"node"`
	Layer     int             `json:"layer"`
	Direction graph.Direction `json:"direction"`
	Parents   []int           `json:"parents"`
	DRG       []int           `json:"drg"`
	Expander  []int           `json:"expander"`
}

type errorResponse struct {
	Code    zerrors.Code `json:"code"`
	Message string       `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graphResponse{Params: s.g.Params(), Stats: s.g.Stats()})
}

func (s *Server) handleParents(w http.ResponseWriter, r *http.Request) {
	node, err := strconv.Atoi(chi.URLParam(r, "node"))
	if err != nil {
		s.writeError(w, zerrors.Wrap(zerrors.ErrCodeInvalidNode, err, "node must be an integer"))
		return
	}
	if err := zerrors.ValidateNode(node, s.g.Nodes()); err != nil {
		s.writeError(w, err)
		return
	}
	layer, err := layerParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	drg, exp := s.g.LayerParents(node, layer)
	writeJSON(w, http.StatusOK, parentsResponse{
		Node:      node,
		Layer:     layer,
		Direction: graph.LayerDirection(layer),
		Parents:   s.g.Parents(node, layer, nil),
		DRG:       drg,
		Expander:  exp,
	})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	if s.g.Nodes() > MaxDOTNodes {
		s.writeError(w, zerrors.New(zerrors.ErrCodeUnsupported, "graph has %d nodes, /dot renders at most %d", s.g.Nodes(), MaxDOTNodes))
		return
	}
	layer, err := layerParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(nodelink.ToDOT(s.g, layer, nodelink.Options{})))
}

func layerParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("layer")
	if raw == "" {
		return 0, nil
	}
	layer, err := strconv.Atoi(raw)
	if err != nil || layer < 0 {
		return 0, zerrors.New(zerrors.ErrCodeInvalidInput, "layer must be a non-negative integer, got %q", raw)
	}
	return layer, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := zerrors.HTTPStatus(err)
	if status >= 500 {
		s.opts.Logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: zerrors.GetCode(err), Message: zerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
