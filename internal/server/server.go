// Package server exposes the generator catalog over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /factories                 factory names
//	GET  /layers                    the kit's layer table
//	GET  /cross-sections            cross-section names
//	GET  /cache                     cache statistics and entries
//	GET  /build/{factory}?k=v       build; query values parse like --set
//	POST /build/{factory}           build from a JSON parameter object
//	GET  /netlist/{factory}?format= netlist as json, dot or svg
//
// Builds return the flattened layout in the pkg/export JSON format.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/photonkit/pkg/cells"
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/export"
	"github.com/matzehuels/photonkit/pkg/netlist"
)

// maxBody bounds POST parameter objects.
const maxBody = 1 << 20

// Server serves one registry.
type Server struct {
	reg    *cells.Registry
	logger *log.Logger
}

// New creates a server over reg. A nil logger discards output.
func New(reg *cells.Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{reg: reg, logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/factories", s.factories)
	r.Get("/layers", s.layers)
	r.Get("/cross-sections", s.crossSections)
	r.Get("/cache", s.cache)
	r.Route("/build/{factory}", func(r chi.Router) {
		r.Get("/", s.build)
		r.Post("/", s.build)
	})
	r.Get("/netlist/{factory}", s.netlist)
	return r
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
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) factories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.Names())
}

type layerEntry struct {
	Name     string `json:"name"`
	Number   int    `json:"number"`
	Datatype int    `json:"datatype"`
}

func (s *Server) layers(w http.ResponseWriter, _ *http.Request) {
	reg := s.reg.PDK().Layers
	out := make([]layerEntry, 0, reg.Len())
	for _, n := range reg.Names() {
		l := reg.MustGet(n)
		out = append(out, layerEntry{Name: n, Number: l.Number, Datatype: l.Datatype})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) crossSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.PDK().CrossSectionNames())
}

func (s *Server) cache(w http.ResponseWriter, _ *http.Request) {
	c := s.reg.Library().Cache
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   c.Stats(),
		"entries": c.Entries(),
	})
}

func (s *Server) build(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.FromComponent(c, s.reg.PDK().Layers))
}

func (s *Server) netlist(w http.ResponseWriter, r *http.Request) {
	c, ok := s.component(w, r)
	if !ok {
		return
	}
	n, err := netlist.Build(c, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, n)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = io.WriteString(w, n.DOT())
	case "svg":
		svg, err := netlist.RenderSVG(r.Context(), n.DOT())
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "unknown netlist format %q", format))
	}
}

// component builds the {factory} of r from its query or JSON body.
func (s *Server) component(w http.ResponseWriter, r *http.Request) (*component.Component, bool) {
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	c, err := s.reg.Build(chi.URLParam(r, "factory"), params)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return c, true
}

func requestParams(r *http.Request) (map[string]any, error) {
	if r.Method == http.MethodPost {
		params := make(map[string]any)
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
		if err := dec.Decode(&params); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "decode request body")
		}
		return params, nil
	}
	q := r.URL.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		if k != "format" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	assignments := make([]string, 0, len(keys))
	for _, k := range keys {
		assignments = append(assignments, k+"="+q.Get(k))
	}
	return cells.ParseParams(assignments)
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeLayerNotFound, errors.ErrCodePortNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeGeometry, errors.ErrCodePathDiscontinuity,
		errors.ErrCodePortMismatch, errors.ErrCodeCacheCollision:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
