// Package remote exposes a running viewer over HTTP.
//
// Every request is executed on the loop goroutine: handlers post a closure
// with loop.Post and wait for it to finish, so viewer state is never touched
// from an HTTP goroutine.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/loop"
	"github.com/techcore/gpu3d/internal/viewer"
)

// ErrUnavailable is returned when the loop does not pick up a call in time.
var ErrUnavailable = errors.New("remote: viewer loop unavailable")

// Target is the viewer surface reachable remotely.
type Target interface {
	Stats() viewer.Stats
	Pause()
	Resume()
	ResetView()
	Reload() bool
	ToggleAutoRotate() bool
	ToggleWobble() bool
	// SetSpeed takes a normalized speed in [0, 1].
	SetSpeed(s float64)
}

// Config holds remote API settings.
type Config struct {
	Addr          string
	AllowAll      bool          // allow every CORS origin
	StatsInterval time.Duration // websocket publish period, defaults to one second
	CallTimeout   time.Duration // how long a request waits for the loop, defaults to five seconds
}

// Server serves the remote control API.
type Server struct {
	cfg        Config
	target     Target
	sched      *loop.Loop
	router     chi.Router
	httpServer *http.Server
	log        *zap.Logger

	mu   sync.Mutex
	subs map[uuid.UUID]struct{}
}

// New creates a server driving target through sched.
func New(cfg Config, target Target, sched *loop.Loop, log *zap.Logger) *Server {
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		target: target,
		sched:  sched,
		log:    log,
		subs:   make(map[uuid.UUID]struct{}),
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Post("/pause", s.action(func() { s.target.Pause() }))
		r.Post("/resume", s.action(func() { s.target.Resume() }))
		r.Post("/reset", s.action(func() { s.target.ResetView() }))
		r.Post("/reload", s.handleReload)
		r.Post("/rotate/toggle", s.action(func() { s.target.ToggleAutoRotate() }))
		r.Post("/wobble/toggle", s.action(func() { s.target.ToggleWobble() }))
		r.Post("/speed", s.handleSpeed)
	})

	r.Get("/ws/stats", s.handleStatsStream)
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.log.Info("remote control listening", zap.String("addr", s.cfg.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server. Called before Start, it makes Start
// return immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Subscribers returns the number of connected stats streams.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

const (
	callPending int32 = iota
	callStarted
	callAbandoned
)

// call runs fn on the loop goroutine and waits for it. A call that times out
// before the loop picks it up is abandoned and fn never runs; one the loop
// has already started is waited for.
func (s *Server) call(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	var state atomic.Int32
	done := make(chan struct{})
	s.sched.Post(func() {
		if !state.CompareAndSwap(callPending, callStarted) {
			return
		}
		fn()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(callPending, callAbandoned) {
			return ErrUnavailable
		}
		<-done
		return nil
	}
}

// snapshot reads the target's stats on the loop goroutine.
func (s *Server) snapshot(ctx context.Context) (viewer.Stats, error) {
	var st viewer.Stats
	err := s.call(ctx, func() { st = s.target.Stats() })
	return st, err
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// action wraps fn as a handler that answers with the resulting stats.
func (s *Server) action(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st viewer.Stats
		err := s.call(r.Context(), func() {
			fn()
			st = s.target.Stats()
		})
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var (
		started bool
		st      viewer.Stats
	)
	err := s.call(r.Context(), func() {
		started = s.target.Reload()
		st = s.target.Stats()
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if !started {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "reload not possible in state " + st.State.String(),
			"stats": st,
		})
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

type speedRequest struct {
	Speed *float64 `json:"speed"`
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.Speed == nil {
		writeError(w, http.StatusBadRequest, errors.New("speed is required"))
		return
	}
	s.action(func() { s.target.SetSpeed(*req.Speed) })(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
