package live

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loomui-dev/loom/internal/config"
	"github.com/loomui-dev/loom/pkg/live/client"
)

// MountFunc builds a session's UI: it attaches elements to the session
// document and registers event handlers. It runs once per connection,
// inside the session's first scheduler turn.
type MountFunc func(*Session)

// Server serves the page shell and the websocket endpoint that drives
// live sessions.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *Metrics
	tracer  *Tracer
	mount   MountFunc

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session

	httpServer *http.Server
}

// NewServer creates a server. metrics and tracer follow cfg.Metrics and
// cfg.Tracing; pass a nil cfg for defaults.
func NewServer(cfg *config.Config, logger *slog.Logger, mount MountFunc) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mount:  mount,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		sessions: make(map[string]*Session),
	}
	if cfg.Metrics {
		s.metrics = NewMetrics(nil)
	}
	if cfg.Tracing {
		s.tracer = NewTracer()
	}
	return s
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/static/loom.js", s.handleClientJS)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexPage, html.EscapeString(s.cfg.Name))
}

func (s *Server) handleClientJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(client.LoomJS)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	fmt.Fprintf(w, "ok sessions=%d\n", n)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(s.logger, s.metrics, s.tracer)
	c := newConn(ws, session, s.logger.With("session", session.ID()))

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}
	s.logger.Info("session connected", "session", session.ID())

	if s.mount != nil {
		session.Scheduler().Turn(func() {
			s.mount(session)
		})
	}
	session.bootstrap()

	c.readLoop(r.Context())

	s.mu.Lock()
	delete(s.sessions, session.ID())
	s.mu.Unlock()
	s.logger.Info("session disconnected", "session", session.ID())
}

// SessionCount reports the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<div id="loom-root"></div>
<script src="/static/loom.js" defer></script>
</body>
</html>
`
