package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves /metrics and /healthz
type Server struct {
	metrics *Metrics
	logger  logger.Logger
	server  *http.Server
}

// NewServer creates a server listening on addr once started
func NewServer(addr string, m *Metrics, log logger.Logger) *Server {
	s := &Server{metrics: m, logger: log}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the HTTP routes
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/healthz", s.health)
	return r
}

type healthResponse struct {
	Status   string     `json:"status"`
	LastPass *time.Time `json:"last_pass,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	last, err := s.metrics.LastPass()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if !last.IsZero() {
		resp.LastPass = &last
	}
	if err != nil {
		resp.Status = "error"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Start listens in the background until Stop is called
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("metrics | listening on %s", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics | server failed: %s", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
