package network

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lixenwraith/antfarm/colony"
	"github.com/lixenwraith/antfarm/core"
	"github.com/lixenwraith/antfarm/engine"
	"github.com/lixenwraith/antfarm/status"
)

var (
	ErrHubClosed    = errors.New("hub closed")
	ErrTooManyPeers = errors.New("max peers reached")
)

// Hub fans driver snapshots out to websocket peers
// It is a read-only observer: nothing a peer sends reaches the driver
type Hub struct {
	config *Config
	logger *zap.Logger

	mu     sync.RWMutex
	peers  map[string]*Peer
	closed bool
	wg     sync.WaitGroup

	seq    atomic.Uint64
	latest atomic.Pointer[engine.Snapshot]

	sendMu   sync.Mutex
	lastSent time.Time
	now      func() time.Time

	statClients *atomic.Int64
	statDropped *atomic.Int64
}

// NewHub creates a hub; nil cfg, reg or logger fall back to defaults
func NewHub(cfg *Config, reg *status.Registry, logger *zap.Logger) *Hub {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		config:      cfg,
		logger:      logger.Named("stream"),
		peers:       make(map[string]*Peer),
		now:         time.Now,
		statClients: reg.Ints.Get(status.StreamClients),
		statDropped: reg.Ints.Get(status.StreamDropped),
	}
}

// Listener adapts the hub to the driver's tick callback
// Control changes and the tick on which the driver paused itself bypass the broadcast throttle
func (h *Hub) Listener() engine.TickListener {
	return func(snap *engine.Snapshot, report colony.TickReport) {
		h.Publish(snap, report.Tick == 0 || (snap != nil && snap.Phase != colony.PhaseRunning.String()))
	}
}

// Publish records snap as the latest frame and broadcasts it
// Unforced publishes within BroadcastInterval of the last broadcast are skipped; returns true if sent
func (h *Hub) Publish(snap *engine.Snapshot, force bool) bool {
	if snap == nil {
		return false
	}
	h.latest.Store(snap)

	h.sendMu.Lock()
	now := h.now()
	if !force && h.config.BroadcastInterval > 0 && !h.lastSent.IsZero() &&
		now.Sub(h.lastSent) < h.config.BroadcastInterval {
		h.sendMu.Unlock()
		return false
	}
	h.lastSent = now
	h.sendMu.Unlock()

	msg := &Message{Type: MsgSnapshot, Seq: h.seq.Add(1), Snapshot: snap}
	data, err := msg.Encode()
	if err != nil {
		h.logger.Error("encode snapshot", zap.Error(err))
		return false
	}

	h.broadcast(data)
	return true
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, peer := range h.peers {
		if !peer.Send(data) {
			h.statDropped.Add(1)
			h.logger.Debug("frame dropped", zap.String("peer", peer.ID))
		}
	}
}

// Add registers a connected peer, queues its hello frame, and starts its I/O loops
func (h *Hub) Add(conn Conn) (*Peer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		conn.Close()
		return nil, ErrHubClosed
	}
	if h.config.MaxPeers > 0 && len(h.peers) >= h.config.MaxPeers {
		conn.Close()
		return nil, ErrTooManyPeers
	}

	peer := newPeer(uuid.NewString(), conn, h.config.SendQueueSize)

	hello := &Message{Type: MsgHello, Seq: h.seq.Load(), PeerID: peer.ID, Snapshot: h.latest.Load()}
	data, err := hello.Encode()
	if err != nil {
		conn.Close()
		return nil, err
	}
	peer.Send(data)

	h.peers[peer.ID] = peer
	h.statClients.Store(int64(len(h.peers)))

	h.wg.Add(3)
	core.Go(func() { defer h.wg.Done(); peer.readLoop(h.config) })
	core.Go(func() { defer h.wg.Done(); peer.writeLoop(h.config) })
	core.Go(func() { defer h.wg.Done(); h.monitorPeer(peer) })

	h.logger.Info("stream client joined", zap.String("peer", peer.ID), zap.String("addr", peer.Addr))
	return peer, nil
}

// monitorPeer removes the peer once it disconnects
func (h *Hub) monitorPeer(peer *Peer) {
	<-peer.Done()

	h.mu.Lock()
	delete(h.peers, peer.ID)
	h.statClients.Store(int64(len(h.peers)))
	h.mu.Unlock()

	h.logger.Info("stream client left",
		zap.String("peer", peer.ID),
		zap.Uint64("sent", peer.Sent.Load()),
		zap.Uint64("dropped", peer.Dropped.Load()))
}

// PeerCount returns current connected peer count
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Latest returns the most recently published snapshot, nil before the first
func (h *Hub) Latest() *engine.Snapshot {
	return h.latest.Load()
}

// Close disconnects all peers and waits for their goroutines
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := make([]*Peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
	h.wg.Wait()
}
