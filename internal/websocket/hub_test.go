package websocket

import (
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

// echoServer upgrades every request and registers it with the hub, then
// blocks until the peer disconnects.
func echoServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := hub.Register(conn)
		if client == nil {
			return
		}
		defer hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for hub.ActiveConnections() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d connections (have %d)", want, hub.ActiveConnections())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(10)
	server := echoServer(t, hub)

	first := dial(t, server)
	second := dial(t, server)
	waitForConnections(t, hub, 2)

	hub.Broadcast("acc_1")

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var event UpdateEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "account_updated", event.Type)
		assert.Equal(t, "acc_1", event.AccountID)
		assert.False(t, event.At.IsZero())
	}
}

func TestHubConnectionLimit(t *testing.T) {
	hub := NewHub(1)
	server := echoServer(t, hub)

	dial(t, server)
	waitForConnections(t, hub, 1)

	// The second connection is accepted at the HTTP layer but closed by
	// the hub; its first read reports the policy-violation close.
	overflow := dial(t, server)
	require.NoError(t, overflow.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := overflow.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))

	assert.Equal(t, 1, hub.ActiveConnections())
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(10)
	server := echoServer(t, hub)

	conn := dial(t, server)
	waitForConnections(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, 0)

	// Broadcasting with no clients is a no-op.
	hub.Broadcast("acc_1")

	// Unregistering nil is safe.
	hub.Unregister(nil)
}
