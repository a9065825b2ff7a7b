package network

import (
	"time"

	"github.com/lixenwraith/antfarm/config"
)

// Config holds snapshot stream configuration
type Config struct {
	// Minimum gap between tick broadcasts, zero sends every tick
	BroadcastInterval time.Duration

	// Allowed browser origins, empty accepts any
	AllowedOrigins []string

	// Connection limits
	MaxPeers  int
	ReadLimit int64

	// Timing
	WriteTimeout time.Duration
	PingInterval time.Duration
	PongTimeout  time.Duration

	// Buffer sizes
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		BroadcastInterval: 100 * time.Millisecond,
		MaxPeers:          64,
		ReadLimit:         4096,
		WriteTimeout:      5 * time.Second,
		PingInterval:      20 * time.Second,
		PongTimeout:       45 * time.Second,
		ReadBufferSize:    1024,
		WriteBufferSize:   64 * 1024,
		SendQueueSize:     8,
	}
}

// ConfigFrom applies the server section of the application config over defaults
func ConfigFrom(sc config.ServerConfig) *Config {
	cfg := DefaultConfig()
	cfg.BroadcastInterval = sc.BroadcastInterval
	cfg.AllowedOrigins = sc.AllowedOrigins
	if sc.SendBuffer > 0 {
		cfg.SendQueueSize = sc.SendBuffer
	}
	return cfg
}
