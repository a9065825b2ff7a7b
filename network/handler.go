package network

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lixenwraith/antfarm/engine"
	"github.com/lixenwraith/antfarm/status"
)

// SnapshotSource supplies the current world snapshot, satisfied by *engine.Driver
type SnapshotSource interface {
	Snapshot() *engine.Snapshot
}

// Handler returns the HTTP surface of the stream
//
//	GET /ws        websocket snapshot stream
//	GET /snapshot  current snapshot as JSON
//	GET /status    metric registry export
//	GET /healthz   liveness
func (h *Hub) Handler(source SnapshotSource, reg *status.Registry) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  h.config.ReadBufferSize,
		WriteBufferSize: h.config.WriteBufferSize,
		CheckOrigin:     h.originAllowed,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Debug("upgrade failed", zap.String("addr", r.RemoteAddr), zap.Error(err))
			return
		}
		if _, err := h.Add(conn); err != nil {
			h.logger.Warn("stream client rejected", zap.String("addr", r.RemoteAddr), zap.Error(err))
		}
	})

	mux.HandleFunc("GET /snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap := source.Snapshot()
		if snap == nil {
			http.Error(w, "no snapshot", http.StatusServiceUnavailable)
			return
		}
		h.writeJSON(w, snap)
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			h.writeJSON(w, map[string]any{})
			return
		}
		h.writeJSON(w, reg.Export())
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	return mux
}

// originAllowed accepts non-browser clients and any listed origin
func (h *Hub) originAllowed(r *http.Request) bool {
	if len(h.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, origin)
}

func (h *Hub) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
