package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestTournamentRoom(t *testing.T) {
	assert.Equal(t, "tournament_42", TournamentRoom(42))
}

func TestBroadcastReachesOnlyItsRoom(t *testing.T) {
	hub := newTestHub(t)

	a := NewClient(hub, nil, TournamentRoom(1))
	b := NewClient(hub, nil, TournamentRoom(2))
	hub.Register <- a
	hub.Register <- b
	require.Eventually(t, func() bool {
		return hub.RoomSize(TournamentRoom(1)) == 1 && hub.RoomSize(TournamentRoom(2)) == 1
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(TournamentRoom(1), Message{Type: EventRoundPaired, Payload: 3})

	select {
	case raw := <-a.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventRoundPaired, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("client in room did not receive the message")
	}
	assert.Empty(t, b.send)
}

func TestUnregisterClosesSendAndEmptiesRoom(t *testing.T) {
	hub := newTestHub(t)
	c := NewClient(hub, nil, TournamentRoom(1))
	hub.Register <- c
	hub.Unregister <- c

	require.Eventually(t, func() bool { return hub.RoomSize(TournamentRoom(1)) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)

	// Broadcasting to a closed client must not panic.
	assert.False(t, c.deliver([]byte("x")))
}

func TestWebsocketRoundTrip(t *testing.T) {
	hub := newTestHub(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn, TournamentRoom(5)).Serve()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(TournamentRoom(5)) == 1 }, time.Second, 5*time.Millisecond)
	hub.BroadcastToRoom(TournamentRoom(5), Message{Type: EventResultRecorded, RoomID: TournamentRoom(5)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventResultRecorded, msg.Type)
	assert.Equal(t, TournamentRoom(5), msg.RoomID)
}
