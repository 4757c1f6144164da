package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/server/middleware"
	"git.home.luguber.info/inful/backupstate/internal/server/responses"
)

// HTTPServer serves the admin API.
type HTTPServer struct {
	addr    string
	daemon  *Daemon
	logger  *slog.Logger
	adapter *ferrors.HTTPErrorAdapter
	server  *http.Server
	ln      net.Listener
}

// NewHTTPServer creates the admin server for d listening on addr.
func NewHTTPServer(addr string, d *Daemon) *HTTPServer {
	return &HTTPServer{
		addr:    addr,
		daemon:  d,
		logger:  d.logger,
		adapter: ferrors.NewHTTPErrorAdapter(d.logger),
	}
}

// Handler returns the admin routes wrapped in logging and panic recovery.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.daemon.metricsHandler != nil {
		mux.Handle("GET /metrics", s.daemon.metricsHandler)
	}
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /verify", s.handleVerify)
	return middleware.Chain(s.logger, s.adapter)(mux)
}

// Start binds the listener and serves in the background. Binding happens
// synchronously so an address already in use fails Start.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to bind admin server").
			WithContext("addr", s.addr).
			Build()
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Admin server error", logfields.Error(err))
		}
	}()

	s.logger.Info("Admin server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *HTTPServer) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("admin server shutdown: %w", err)
	}
	s.logger.Info("Admin server stopped")
	return nil
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := s.daemon.Health()
	status := http.StatusOK
	if health.Status == string(HealthStatusUnhealthy) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (s *HTTPServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	res := s.daemon.store.Load(r.Context())
	if res.IsErr() {
		s.adapter.WriteErrorResponse(w, r, res.UnwrapErr())
		return
	}
	snap := res.Unwrap()
	if snap.IsNone() {
		s.adapter.WriteErrorResponse(w, r, ferrors.NotFoundError("backup state").
			WithContext("path", s.daemon.store.Path()).
			Build())
		return
	}
	writeJSON(w, http.StatusOK, snap.Unwrap())
}

// handleVerify always answers 200: verification is advisory and its failure
// is reported in the body.
func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	res := s.daemon.runner.Run(r.Context(), TriggerHTTP)
	resp := responses.VerifyResponse{Verified: true}
	if res.IsErr() {
		err := res.UnwrapErr()
		s.logger.Warn("Backup state verification failed", logfields.Error(err))
		resp.Error = s.adapter.FormatErrorResponse(err).Error
	} else {
		resp.Report = res.Unwrap()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
