package network

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/antfarm/config"
	"github.com/lixenwraith/antfarm/engine"
	"github.com/lixenwraith/antfarm/status"
)

type staticSource struct {
	snap *engine.Snapshot
}

func (s staticSource) Snapshot() *engine.Snapshot {
	return s.snap
}

func newTestServer(t *testing.T, cfg *Config, source SnapshotSource) (*Hub, *httptest.Server, *status.Registry) {
	t.Helper()
	reg := status.NewRegistry()
	hub := NewHub(cfg, reg, nil)
	srv := httptest.NewServer(hub.Handler(source, reg))
	// Cleanups run in reverse: peers close before the listener
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)
	return hub, srv, reg
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readMessage(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)
	m, err := Decode(data)
	require.NoError(t, err)
	return m
}

func TestStreamDeliversSnapshots(t *testing.T) {
	hub, srv, reg := newTestServer(t, DefaultConfig(), staticSource{})
	hub.Publish(testSnapshot(3), true)

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)

	hello := readMessage(t, conn)
	assert.Equal(t, MsgHello, hello.Type)
	assert.NotEmpty(t, hello.PeerID)
	require.NotNil(t, hello.Snapshot)
	assert.Equal(t, uint64(3), hello.Snapshot.Tick)
	assert.Equal(t, 1, hub.PeerCount())
	assert.Equal(t, int64(1), reg.Ints.Get(status.StreamClients).Load())

	hub.Publish(testSnapshot(7), true)
	msg := readMessage(t, conn)
	assert.Equal(t, MsgSnapshot, msg.Type)
	assert.Equal(t, uint64(2), msg.Seq)
	assert.Equal(t, uint64(7), msg.Snapshot.Tick)

	conn.Close()
	require.Eventually(t, func() bool { return hub.PeerCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginCheck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	hub, srv, _ := newTestServer(t, cfg, staticSource{})

	_, resp, err := dial(t, srv, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	conn, _, err := dial(t, srv, http.Header{"Origin": {"http://localhost:3000"}})
	require.NoError(t, err)
	assert.Equal(t, MsgHello, readMessage(t, conn).Type)
	assert.Equal(t, 1, hub.PeerCount())
}

func TestHTTPEndpoints(t *testing.T) {
	snap := testSnapshot(12)
	snap.Collected = 4
	_, srv, reg := newTestServer(t, DefaultConfig(), staticSource{snap: snap})
	reg.Ints.Get(status.EngineTicks).Store(12)

	get := func(path string) (*http.Response, []byte) {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, body
	}

	resp, body := get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, body = get("/snapshot")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var got engine.Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, uint64(12), got.Tick)
	assert.Equal(t, 4, got.Collected)

	resp, body = get("/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var metrics map[string]any
	require.NoError(t, json.Unmarshal(body, &metrics))
	assert.Equal(t, float64(12), metrics[status.EngineTicks])
	assert.Contains(t, metrics, status.StreamClients)
	assert.Contains(t, metrics, status.StreamDropped)

	post, err := srv.Client().Post(srv.URL+"/snapshot", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestSnapshotUnavailable(t *testing.T) {
	_, srv, _ := newTestServer(t, DefaultConfig(), staticSource{})

	resp, err := srv.Client().Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.ServerConfig{
		BroadcastInterval: 250 * time.Millisecond,
		SendBuffer:        3,
		AllowedOrigins:    []string{"http://a"},
	})
	assert.Equal(t, 250*time.Millisecond, cfg.BroadcastInterval)
	assert.Equal(t, 3, cfg.SendQueueSize)
	assert.Equal(t, []string{"http://a"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultConfig().MaxPeers, cfg.MaxPeers)

	cfg = ConfigFrom(config.ServerConfig{})
	assert.Equal(t, DefaultConfig().SendQueueSize, cfg.SendQueueSize)
}
