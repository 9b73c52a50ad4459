package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/auralabs/aura/internal/orchestrator"
	"github.com/auralabs/aura/internal/persona"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local device API
	},
}

// handleMonitor streams a continuous monitoring session over a WebSocket.
// Query parameters: persona, screen, listen, interval_sec, max_duration_sec.
// The session stops when the client disconnects or the duration bound is
// reached.
func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("monitor upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	q := r.URL.Query()
	opts := orchestrator.MonitorOptions{
		Screen: q.Get("screen") != "false",
		Listen: q.Get("listen") == "true",
	}
	if v, err := strconv.Atoi(q.Get("interval_sec")); err == nil && v > 0 {
		opts.Interval = time.Duration(v) * time.Second
	}
	if v, err := strconv.Atoi(q.Get("max_duration_sec")); err == nil && v > 0 {
		opts.MaxDuration = time.Duration(v) * time.Second
	}

	m := s.perceiver.StartMonitor(r.Context(), persona.Parse(q.Get("persona")), opts)
	defer m.Stop()

	// Read loop only to notice the client going away.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case p, ok := <-m.Events():
			if !ok {
				return
			}
			if err := conn.WriteJSON(p); err != nil {
				s.log.Debug("monitor client write failed: %v", err)
				return
			}
		case <-disconnected:
			return
		}
	}
}
