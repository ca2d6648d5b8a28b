package service

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

func dialHub(t *testing.T, hub *ProgressHub, userID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connections(userID) > 0 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestProgressHub_PushToUserLocal(t *testing.T) {
	hub := NewProgressHub(nil)
	go hub.Run()
	defer hub.Stop()

	alice := dialHub(t, hub, 1)
	bob := dialHub(t, hub, 2)

	hub.PushToUser(1, WSMessage{Type: EventDownloadProgress, Data: map[string]int{"progress": 40}})

	msg := readMessage(t, alice)
	assert.Equal(t, EventDownloadProgress, msg.Type)
	assert.Equal(t, float64(40), msg.Data.(map[string]interface{})["progress"])

	// 其他用户收不到
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestProgressHub_PingPong(t *testing.T) {
	hub := NewProgressHub(nil)
	go hub.Run()
	defer hub.Stop()

	conn := dialHub(t, hub, 3)
	require.NoError(t, conn.WriteJSON(WSMessage{Type: "PING"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "PONG", msg.Type)
}

func TestProgressHub_UnregisterOnClose(t *testing.T) {
	hub := NewProgressHub(nil)
	go hub.Run()
	defer hub.Stop()

	conn := dialHub(t, hub, 4)
	require.Equal(t, 1, hub.Connections(4))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections(4) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestProgressHub_StopIsIdempotent(t *testing.T) {
	hub := NewProgressHub(nil)
	go hub.Run()

	dialHub(t, hub, 5)
	hub.Stop()
	hub.Stop()
	assert.Equal(t, 0, hub.Connections(5))
}
