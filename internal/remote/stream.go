package remote

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/viewer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is the outgoing stats stream format.
type streamMessage struct {
	Type  string        `json:"type"` // "hello", "stats" or "error"
	ID    string        `json:"id,omitempty"`
	Stats *viewer.Stats `json:"stats,omitempty"`
	Error string        `json:"error,omitempty"`
}

const writeWait = 5 * time.Second

func (s *Server) handleStatsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stats stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := s.subscribe()
	defer s.unsubscribe(id)
	log := s.log.With(zap.Stringer("subscriber", id))
	log.Debug("stats subscriber connected")

	// The client never sends anything we act on; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug("stats stream read", zap.Error(err))
				}
				return
			}
		}
	}()

	if err := s.send(conn, streamMessage{Type: "hello", ID: id.String()}); err != nil {
		return
	}

	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			log.Debug("stats subscriber left")
			return
		case <-ticker.C:
			msg := streamMessage{Type: "stats"}
			st, err := s.snapshot(r.Context())
			if err != nil {
				msg = streamMessage{Type: "error", Error: err.Error()}
			} else {
				msg.Stats = &st
			}
			if err := s.send(conn, msg); err != nil {
				log.Debug("stats stream write", zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg streamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (s *Server) subscribe() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.subs[id] = struct{}{}
	s.mu.Unlock()
	return id
}

func (s *Server) unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}
