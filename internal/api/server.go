// Package api exposes a scene over HTTP.
//
// Input attributes written through the API go into the scene store like any
// other host change; the router picks them up on its next tick. The
// resolve endpoints run a single resolver without touching the scene.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/lumen/internal/arbiter"
	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/router"
	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/spectral"
	"github.com/jmylchreest/lumen/internal/version"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 8 << 20

// Server serves the HTTP API for one scene.
type Server struct {
	store   *scene.Store
	router  *router.Router
	arbiter *arbiter.Arbiter
	white   colour.Linear
	logger  hclog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithWhite sets the white reference used by the spectral resolve endpoint.
func WithWhite(w colour.Linear) Option {
	return func(s *Server) { s.white = w }
}

// New returns a server for store. rt and arb must be the router and arbiter
// attached to the same store.
func New(store *scene.Store, rt *router.Router, arb *arbiter.Arbiter, opts ...Option) *Server {
	s := &Server{
		store:   store,
		router:  rt,
		arbiter: arb,
		white:   colour.White,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, serverHeader)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/recompute", s.handleRecompute).Methods(http.MethodPost)
	v1.HandleFunc("/attributes", s.handleAttributes).Methods(http.MethodGet)

	v1.HandleFunc("/entities", s.handleEntityList).Methods(http.MethodGet)
	v1.HandleFunc("/entities/{id}", s.handleEntityGet).Methods(http.MethodGet)
	v1.HandleFunc("/entities/{id}", s.handleEntityPatch).Methods(http.MethodPatch)
	v1.HandleFunc("/entities/{id}", s.handleEntityPut).Methods(http.MethodPut)
	v1.HandleFunc("/entities/{id}", s.handleEntityDelete).Methods(http.MethodDelete)
	v1.HandleFunc("/entities/{id}/plan", s.handleEntityPlan).Methods(http.MethodGet)
	v1.HandleFunc("/entities/{id}/preset/{name}", s.handleEntityPreset).Methods(http.MethodPost)

	v1.HandleFunc("/presets", s.handlePresetList).Methods(http.MethodGet)
	v1.HandleFunc("/presets/{name}", s.handlePresetGet).Methods(http.MethodGet)

	v1.HandleFunc("/resolve/spectral", s.handleResolveSpectral).Methods(http.MethodPost)
	v1.HandleFunc("/resolve/photometric", s.handleResolvePhotometric).Methods(http.MethodPost)
	v1.HandleFunc("/resolve/temperature", s.handleResolveTemperature).Methods(http.MethodPost)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// resolveSpectral resolves with the server's white reference.
func (s *Server) resolveSpectral(spec spectral.Spec) (colour.Linear, error) {
	return spectral.NewResolver(s.white).Resolve(spec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	body := errorBody{Error: code}
	if err != nil {
		body.Detail = err.Error()
	}
	writeJSON(w, status, body)
}

// decodeBody strictly decodes a JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		args := []any{"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start)}
		switch {
		case rec.status >= 500:
			s.logger.Error("request", args...)
		case rec.status >= 400:
			s.logger.Warn("request", args...)
		default:
			s.logger.Debug("request", args...)
		}
	})
}

func serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", version.UserAgent())
		next.ServeHTTP(w, r)
	})
}
