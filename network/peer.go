package network

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn used by a peer
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	RemoteAddr() net.Addr
	Close() error
}

// ConnState represents connection lifecycle state
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnected
	StateDisconnecting
)

// Peer is one stream subscriber
// Only writeLoop writes to the connection; Send never blocks
type Peer struct {
	ID       string
	Addr     string
	State    atomic.Uint32 // ConnState
	LastSeen atomic.Int64  // UnixNano

	Sent    atomic.Uint64
	Dropped atomic.Uint64

	conn   Conn
	sendCh chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
}

func newPeer(id string, conn Conn, sendQueueSize int) *Peer {
	p := &Peer{
		ID:      id,
		conn:    conn,
		sendCh:  make(chan []byte, max(1, sendQueueSize)),
		closeCh: make(chan struct{}),
	}
	if addr := conn.RemoteAddr(); addr != nil {
		p.Addr = addr.String()
	}
	p.State.Store(uint32(StateConnected))
	p.LastSeen.Store(time.Now().UnixNano())
	return p
}

// Send queues an encoded frame
// Returns false if the peer is disconnected or its queue is full
func (p *Peer) Send(data []byte) bool {
	if ConnState(p.State.Load()) != StateConnected {
		return false
	}

	select {
	case p.sendCh <- data:
		return true
	default:
		p.Dropped.Add(1)
		return false
	}
}

// Done is closed once the peer shuts down
func (p *Peer) Done() <-chan struct{} {
	return p.closeCh
}

// Close initiates shutdown, safe to call from any goroutine
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		p.State.Store(uint32(StateDisconnecting))
		close(p.closeCh)
		p.conn.Close()
		p.State.Store(uint32(StateDisconnected))
	})
}

// readLoop drains client frames so control messages are processed
// Clients have nothing to say; any frame only refreshes LastSeen
func (p *Peer) readLoop(cfg *Config) {
	defer p.Close()

	p.conn.SetReadLimit(cfg.ReadLimit)
	p.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	p.conn.SetPongHandler(func(string) error {
		p.LastSeen.Store(time.Now().UnixNano())
		return p.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			return
		}
		p.LastSeen.Store(time.Now().UnixNano())
		p.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	}
}

// writeLoop sends queued frames and keepalive pings
func (p *Peer) writeLoop(cfg *Config) {
	defer p.Close()

	ping := time.NewTicker(cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-p.closeCh:
			return
		case data := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			p.Sent.Add(1)
		case <-ping.C:
			p.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
