package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DegensAgainstDecency/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func newClient(hub *Hub, id string, buf int) *Client {
	c := &Client{PlayerID: id, Send: make(chan OutgoingMessage, buf), Hub: hub}
	hub.register <- c
	return c
}

func recv(t *testing.T, c *Client) OutgoingMessage {
	t.Helper()
	select {
	case m := <-c.Send:
		return m
	case <-time.After(time.Second):
		t.Fatalf("no message for %s", c.PlayerID)
		return OutgoingMessage{}
	}
}

func TestHubBroadcastToPlayers(t *testing.T) {
	hub := runHub(t)
	c1 := newClient(hub, "p1", 1)
	c2 := newClient(hub, "p2", 1)
	c3 := newClient(hub, "p3", 1)

	hub.BroadcastToPlayers([]string{"p1", "p2", "ghost"}, OutgoingMessage{
		Event: EventSnapshot,
		Data:  map[string]any{"id": "s1"},
	})

	assert.Equal(t, EventSnapshot, recv(t, c1).Event)
	assert.Equal(t, EventSnapshot, recv(t, c2).Event)

	time.Sleep(20 * time.Millisecond)
	select {
	case <-c3.Send:
		assert.Fail(t, "p3 should NOT receive anything")
	default:
	}
}

func TestHubSendToPlayer(t *testing.T) {
	hub := runHub(t)
	c1 := newClient(hub, "p1", 1)
	c2 := newClient(hub, "p2", 1)

	hub.SendToPlayer("p1", OutgoingMessage{Event: EventError, Data: "not your turn"})

	received := recv(t, c1)
	assert.Equal(t, EventError, received.Event)
	assert.Equal(t, "not your turn", received.Data)

	time.Sleep(20 * time.Millisecond)
	select {
	case <-c2.Send:
		assert.Fail(t, "p2 should NOT receive anything")
	default:
	}
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	hub := runHub(t)
	slow := newClient(hub, "slow", 1)
	fast := newClient(hub, "fast", 4)

	for i := 0; i < 3; i++ {
		hub.BroadcastToPlayers([]string{"slow", "fast"}, OutgoingMessage{Event: "tick"})
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, "tick", recv(t, fast).Event)
	}
	assert.Equal(t, "tick", recv(t, slow).Event)
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := runHub(t)
	c := newClient(hub, "p1", 1)

	assert.Eventually(t, func() bool {
		_, ok := hub.ClientByAddress("p1")
		return ok
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- c
	assert.Eventually(t, func() bool { return hub.Online() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open, "send channel should be closed after unregister")
}

func TestHubReconnectReplacesClient(t *testing.T) {
	hub := runHub(t)
	old := newClient(hub, "p1", 1)
	fresh := newClient(hub, "p1", 1)

	_, open := <-old.Send
	assert.False(t, open)

	// a late unregister from the old connection must not drop the new one
	hub.unregister <- old
	hub.SendToPlayer("p1", OutgoingMessage{Event: "hello"})
	assert.Equal(t, "hello", recv(t, fresh).Event)
	assert.Equal(t, 1, hub.Online())
}

func TestHubIncomingDispatch(t *testing.T) {
	hub := NewHub()
	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { got <- m }
	go hub.Run()
	defer hub.Close()

	hub.incoming <- IncomingMessage{From: "p1", Event: "action", Data: map[string]any{"type": "fold"}}

	select {
	case m := <-got:
		assert.Equal(t, "p1", m.From)
		assert.Equal(t, "action", m.Event)
	case <-time.After(time.Second):
		t.Fatal("incoming message not dispatched")
	}
}

func TestHubCloseUnblocksSenders(t *testing.T) {
	hub := NewHub()
	hub.Close()
	hub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.SendToPlayer("p1", OutgoingMessage{Event: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendToPlayer blocked on a closed hub")
	}
}

func TestServeWSRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { got <- m }
	go hub.Run()
	defer hub.Close()

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { c.Set(middleware.PlayerIDKey, "p1") }, ServeWS(hub))
	r.GET("/anon", ServeWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/anon")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Online() == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToPlayer("p1", OutgoingMessage{Event: EventSnapshot, Data: "s"})
	var out OutgoingMessage
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, EventSnapshot, out.Event)

	// From is taken from the connection, not the frame
	require.NoError(t, conn.WriteJSON(IncomingMessage{From: "spoofed", Event: "chat", Data: "gg"}))
	select {
	case m := <-got:
		assert.Equal(t, "p1", m.From)
		assert.Equal(t, "gg", m.Data)
	case <-time.After(time.Second):
		t.Fatal("frame not delivered to OnIncoming")
	}

	// a bad frame is answered, the connection stays up
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, EventError, out.Event)
	assert.Equal(t, 1, hub.Online())
}
