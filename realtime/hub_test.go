package realtime

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

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil)
	go hub.Run(ctx)
	return hub
}

func dialRoom(t *testing.T, hub *Hub, room string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, room)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount(room) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestRoomName(t *testing.T) {
	assert.Equal(t, "organization_42", RoomName(42))
}

func TestPublishReachesRoomSubscribers(t *testing.T) {
	hub := startHub(t)
	conn := dialRoom(t, hub, RoomName(7))

	hub.Publish(7, EventInvitationCreated, map[string]int{"invitation_id": 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
		RoomID  string         `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, EventInvitationCreated, msg.Type)
	assert.Equal(t, "organization_7", msg.RoomID)
	assert.Equal(t, 3, msg.Payload["invitation_id"])
}

func TestPublishToOtherRoomIsNotDelivered(t *testing.T) {
	hub := startHub(t)
	conn := dialRoom(t, hub, RoomName(1))

	hub.Publish(2, EventMemberRemoved, nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestClientUnregistersOnDisconnect(t *testing.T) {
	hub := startHub(t)
	conn := dialRoom(t, hub, RoomName(5))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(RoomName(5)) == 0 }, 2*time.Second, 10*time.Millisecond)
}
