package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	up := Upgrader("*")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(up, w, r, "admin-1")
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool {
		n, _ := hub.Stats()
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{Type: "refresh", View: "heatmap", Seq: 4, Data: []int{1, 2}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "refresh", got["type"])
	assert.Equal(t, "heatmap", got["view"])
	assert.EqualValues(t, 4, got["seq"])

	hub.Broadcast(Message{Type: "refresh", View: "reports", Seq: 9})
	hub.Broadcast(Message{Type: "refresh", View: "heatmap", Seq: 2})

	require.Eventually(t, func() bool {
		_, seqs := hub.Stats()
		return seqs["reports"] == 9
	}, 2*time.Second, 10*time.Millisecond)
	_, seqs := hub.Stats()
	assert.Equal(t, map[string]uint64{"heatmap": 4, "reports": 9}, seqs)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool {
		n, _ := hub.Stats()
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		n, _ := hub.Stats()
		return n == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUpgraderOrigin(t *testing.T) {
	up := Upgrader("https://admin.beacon.ph")
	r := httptest.NewRequest(http.MethodGet, "/ws/dashboard", nil)

	r.Header.Set("Origin", "https://admin.beacon.ph")
	assert.True(t, up.CheckOrigin(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(r))

	assert.True(t, Upgrader("*").CheckOrigin(r))
}
