// Package server streams a simulated formation over HTTP and websockets.
//
//	GET  /ws            state stream; accepts Command messages
//	GET  /state         latest state as JSON
//	GET  /metrics       room counters
//	GET  /admin/config  current formation and range
//	POST /admin/config  {"formation":"raid","range":6}
//	GET  /healthz       liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Garsondee/formation-sense/internal/formation"
)

// Server serves one room.
type Server struct {
	room   *Room
	log    *zap.Logger
	router chi.Router
}

// New builds the HTTP surface for room.
func New(room *Room, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{room: room, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", s.handleWS)
	r.Get("/state", s.handleState)
	r.Get("/metrics", s.handleMetrics)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Post("/config", s.handlePostConfig)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the room and the HTTP server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	roomCtx, stopRoom := context.WithCancel(ctx)
	defer stopRoom()
	go s.room.Run(roomCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.room.State())
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	st := s.room.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":    st.Tick,
		"metrics": s.room.Metrics().Snapshot(),
	})
}

type layoutConfig struct {
	Formation string  `json:"formation"`
	Range     float64 `json:"range"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	st := s.room.State()
	writeJSON(w, http.StatusOK, layoutConfig{Formation: st.Formation, Range: st.Range})
}

func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	var body layoutConfig
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.Range < 0 {
		http.Error(w, "range must be positive", http.StatusBadRequest)
		return
	}
	if body.Formation != "" {
		if _, err := formation.ParseKind(body.Formation); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if !s.room.Submit(Command{Type: "layout", Formation: body.Formation, Range: body.Range}) {
		http.Error(w, "room busy", http.StatusServiceUnavailable)
		return
	}
	s.log.Info("layout change queued", zap.String("formation", body.Formation), zap.Float64("range", body.Range))
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
