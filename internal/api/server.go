// Package api implements the HTTP service for leveldiagram.
//
// The service exposes the layout pipeline over JSON and persists diagram
// documents in a gallery backed by a [store.Store]. Routes:
//
//	GET    /healthz                    liveness probe
//	POST   /v1/layout                  compute geometry for a diagram
//	POST   /v1/render                  render a diagram to an artifact
//	GET    /v1/documents               list gallery documents
//	POST   /v1/documents               save a diagram
//	GET    /v1/documents/{id}          fetch one document
//	PUT    /v1/documents/{id}          replace a document
//	DELETE /v1/documents/{id}          delete a document
//	POST   /v1/documents/{id}/layout   compute and persist geometry
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/errors"
	"github.com/dihm/leveldiagram/pkg/pipeline"
	"github.com/dihm/leveldiagram/pkg/store"
)

// maxBodyBytes bounds request bodies; diagrams are small documents.
const maxBodyBytes = 1 << 20

// Server wires the pipeline and the document store into an HTTP handler.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. A nil store disables the gallery routes with
// 503 responses; a nil logger falls back to the default logger.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleCreateDocument)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Put("/", s.handlePutDocument)
				r.Delete("/", s.handleDeleteDocument)
				r.Post("/layout", s.handleDocumentLayout)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// layoutRequest is the body of POST /v1/layout and /v1/render.
type layoutRequest struct {
	Diagram diagram.Document `json:"diagram"`
	Options pipeline.Options `json:"options"`
}

// layoutResponse is the body of a successful layout call.
type layoutResponse struct {
	DiagramHash string          `json:"diagram_hash"`
	Geometry    json.RawMessage `json:"geometry"`
	CacheHit    bool            `json:"cache_hit"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, d, ok := s.decodeLayoutRequest(w, r)
	if !ok {
		return
	}
	req.Options.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), d, req.Options)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		DiagramHash: result.DiagramHash,
		Geometry:    json.RawMessage(result.Artifacts[pipeline.FormatJSON]),
		CacheHit:    result.CacheInfo.LayoutHit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, d, ok := s.decodeLayoutRequest(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Options.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), d, req.Options)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// decodeLayoutRequest parses and validates the shared request body.
func (s *Server) decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, *diagram.Diagram, bool) {
	var req layoutRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return layoutRequest{}, nil, false
	}

	for _, l := range req.Diagram.Levels {
		if err := errors.ValidateLevelID(l.ID); err != nil {
			writeError(w, s.logger, err)
			return layoutRequest{}, nil, false
		}
		if err := errors.ValidateGroupName(l.Group); err != nil {
			writeError(w, s.logger, err)
			return layoutRequest{}, nil, false
		}
	}

	d, err := diagram.ToDiagram(req.Diagram)
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "invalid diagram"))
		return layoutRequest{}, nil, false
	}
	return req, d, true
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/json"
	}
}

// logRequests logs each request with method, path, status, and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
