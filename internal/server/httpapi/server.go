package httpapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the HTTP endpoint: account API, /metrics and /healthz/liveness.
type Server struct {
	addr       string
	log        logging.Logger
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the mux. Nothing listens until Start.
func NewServer(addr string, h *Handler, registry *prometheus.Registry, log logging.Logger) *Server {
	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("GET /metrics", metrics.Handler(registry))
	mux.HandleFunc("GET /healthz/liveness", handleLiveness)

	return &Server{
		addr: addr,
		log:  log.With("module", "httpapi"),
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address. Serve errors arrive on the
// returned channel, which is closed when the server stops.
func (s *Server) Start(ctx context.Context) (<-chan error, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.Serve(listener); !errServerClosed(err) {
			errCh <- err
		}
	}()

	s.log.Info(ctx, "http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop waits for in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.log.Info(ctx, "http server stopped")
	return err
}

func handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
