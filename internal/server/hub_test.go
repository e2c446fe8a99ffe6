package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/logging"
	th "github.com/Tyrowin/roomchat/internal/testhelpers"
)

type call struct {
	method string
	connID string
	args   []any
}

// fakeProtocol records the calls routed to it and returns err for each.
type fakeProtocol struct {
	mu    sync.Mutex
	calls []call
	err   error
	names map[string]string
}

func (p *fakeProtocol) record(c call) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
	return p.err
}

func (p *fakeProtocol) Join(connID, username, room string) error {
	return p.record(call{method: "Join", connID: connID, args: []any{username, room}})
}

func (p *fakeProtocol) SendMessage(connID, text string) error {
	return p.record(call{method: "SendMessage", connID: connID, args: []any{text}})
}

func (p *fakeProtocol) SendLocation(connID string, at chat.Coordinates) error {
	return p.record(call{method: "SendLocation", connID: connID, args: []any{at}})
}

func (p *fakeProtocol) Disconnect(connID string) {
	_ = p.record(call{method: "Disconnect", connID: connID})
}

func (p *fakeProtocol) DisplayName(connID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name, ok := p.names[connID]; ok {
		return name
	}
	return connID
}

// lockedBuffer is a log sink shared between the hub goroutine and the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// find returns the first JSON log record whose msg is msg.
func (b *lockedBuffer) find(msg string) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range strings.Split(b.buf.String(), "\n") {
		var rec map[string]any
		if json.Unmarshal([]byte(line), &rec) != nil {
			continue
		}
		if rec["msg"] == msg {
			return rec, true
		}
	}
	return nil, false
}

func (p *fakeProtocol) Calls() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]call(nil), p.calls...)
}

func newTestHub(t *testing.T, opts ...HubOption) (*Hub, *fakeProtocol) {
	t.Helper()
	h := NewHub(append([]HubOption{WithHubLogger(logging.Discard())}, opts...)...)
	p := &fakeProtocol{}
	h.SetProtocol(p)
	return h, p
}

func startHub(t *testing.T, h *Hub) {
	t.Helper()
	go h.Run()
	t.Cleanup(func() {
		_ = h.Shutdown(time.Second)
	})
}

func readSend(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound frame")
		return nil
	}
}

func TestNewClient_UsesHubLimits(t *testing.T) {
	h, _ := newTestHub(t, WithSendBufferSize(8), WithMaxMessageSize(1024))

	a := NewClient(nil, h, "10.0.0.1")
	b := NewClient(nil, h, "10.0.0.2")

	require.NotEmpty(t, a.ID())
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, 8, cap(a.send))
	require.Equal(t, int64(1024), a.maxMessageSize)
}

func TestHub_EmitUnknownConnection(t *testing.T) {
	h, _ := newTestHub(t)

	err := h.Emit("missing", chat.Event{Name: chat.EventRoomData, Payload: chat.RoomSnapshot{Room: "r"}})
	require.ErrorIs(t, err, ErrUnknownConnection)
}

func TestHub_EmitQueuesEncodedEvent(t *testing.T) {
	h, _ := newTestHub(t)
	c := NewClient(nil, h, "test")
	h.addClient(c)

	err := h.Emit(c.ID(), chat.Event{
		Name:    chat.EventMessage,
		Payload: chat.Message{Username: "alice", Text: "hi", CreatedAt: time.UnixMilli(5)},
	})
	require.NoError(t, err)
	require.JSONEq(t,
		`{"event":"message","data":{"username":"alice","text":"hi","createdAt":5}}`,
		string(readSend(t, c)))
}

func TestHub_EmitFullBuffer(t *testing.T) {
	h, _ := newTestHub(t, WithSendBufferSize(1))
	c := NewClient(nil, h, "test")
	h.addClient(c)

	event := chat.Event{Name: chat.EventRoomData, Payload: chat.RoomSnapshot{Room: "r"}}
	require.NoError(t, h.Emit(c.ID(), event))
	require.ErrorIs(t, h.Emit(c.ID(), event), ErrSendBufferFull)
}

func TestHub_EmitUnsupportedPayload(t *testing.T) {
	h, _ := newTestHub(t)
	c := NewClient(nil, h, "test")
	h.addClient(c)

	require.Error(t, h.Emit(c.ID(), chat.Event{Name: "weird", Payload: struct{}{}}))
	require.Empty(t, c.send)
}

func TestHub_RoutesInboundAndAcks(t *testing.T) {
	h, p := newTestHub(t)
	c := NewClient(nil, h, "test")
	h.addClient(c)
	startHub(t, h)

	h.inbound <- inboundMessage{client: c, payload: []byte(`{"event":"join","ack":1,"data":{"username":"alice","room":"lobby"}}`)}
	require.JSONEq(t, `{"event":"ack","ack":1}`, string(readSend(t, c)))

	h.inbound <- inboundMessage{client: c, payload: []byte(`{"event":"sendMessage","ack":2,"data":"hello"}`)}
	require.JSONEq(t, `{"event":"ack","ack":2}`, string(readSend(t, c)))

	h.inbound <- inboundMessage{client: c, payload: []byte(`{"event":"sendLocation","ack":3,"data":{"latitude":1,"longitude":2}}`)}
	require.JSONEq(t, `{"event":"ack","ack":3}`, string(readSend(t, c)))

	require.Equal(t, []call{
		{method: "Join", connID: c.ID(), args: []any{"alice", "lobby"}},
		{method: "SendMessage", connID: c.ID(), args: []any{"hello"}},
		{method: "SendLocation", connID: c.ID(), args: []any{chat.Coordinates{Latitude: 1, Longitude: 2}}},
	}, p.Calls())
}

func TestHub_AckCarriesProtocolError(t *testing.T) {
	h, p := newTestHub(t)
	p.err = chat.ErrUsernameTaken
	c := NewClient(nil, h, "test")
	h.addClient(c)
	startHub(t, h)

	h.inbound <- inboundMessage{client: c, payload: []byte(`{"event":"join","ack":7,"data":{"username":"alice","room":"lobby"}}`)}

	var frame outboundFrame
	require.NoError(t, json.Unmarshal(readSend(t, c), &frame))
	require.Equal(t, EventAck, frame.Event)
	require.Equal(t, "Username is in use!", frame.Error)
}

func TestHub_BadFrameNeverReachesProtocol(t *testing.T) {
	h, p := newTestHub(t)
	c := NewClient(nil, h, "test")
	h.addClient(c)
	startHub(t, h)

	h.inbound <- inboundMessage{client: c, payload: []byte(`garbage`)}
	h.inbound <- inboundMessage{client: c, payload: []byte(`{"event":"sendLocation","ack":9,"data":{"latitude":200,"longitude":0}}`)}

	require.JSONEq(t, `{"event":"ack","ack":9,"error":"Location coordinates are invalid."}`, string(readSend(t, c)))
	require.Empty(t, p.Calls())
}

func TestHub_UnregisterRunsDisconnect(t *testing.T) {
	h, p := newTestHub(t)
	startHub(t, h)

	c := NewClient(nil, h, "test")
	require.True(t, h.Register(c))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.unregister <- c

	select {
	case _, ok := <-c.send:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	require.Equal(t, []call{{method: "Disconnect", connID: c.ID()}}, p.Calls())
	require.Equal(t, 0, h.ClientCount())
	require.ErrorIs(t, h.Emit(c.ID(), chat.Event{Name: chat.EventRoomData, Payload: chat.RoomSnapshot{}}), ErrUnknownConnection)
}

func TestHub_UnregisterTwiceIsNoop(t *testing.T) {
	h, p := newTestHub(t)
	startHub(t, h)

	c := NewClient(nil, h, "test")
	require.True(t, h.Register(c))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.unregister <- c
	h.unregister <- c
	// A third send only returns once the second has been fully handled.
	h.unregister <- c

	require.Len(t, p.Calls(), 1)
}

func TestHub_Shutdown(t *testing.T) {
	h, _ := newTestHub(t)
	go h.Run()

	require.NoError(t, h.Shutdown(time.Second))
	require.False(t, h.Register(NewClient(nil, h, "late")))
}

func TestHub_LogsCarryDisplayName(t *testing.T) {
	logs := &lockedBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h, p := newTestHub(t, WithHubLogger(logger))
	c := NewClient(nil, h, "test")
	p.err = chat.ErrProfanity
	p.names = map[string]string{c.ID(): "alice"}
	startHub(t, h)
	require.True(t, h.Register(c))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.inbound <- inboundMessage{client: c, payload: []byte(`{"event":"sendMessage","ack":1,"data":"rude"}`)}
	readSend(t, c)

	rec, ok := logs.find("request failed")
	require.True(t, ok)
	require.Equal(t, "alice", rec["username"])
	require.Equal(t, c.ID(), rec["conn_id"])

	h.unregister <- c
	select {
	case <-c.send:
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	require.Eventually(t, func() bool {
		rec, ok := logs.find("client unregistered")
		return ok && rec["username"] == "alice"
	}, time.Second, 5*time.Millisecond)
}

func TestHub_DropsClientWithFullQueue(t *testing.T) {
	h, p := newTestHub(t, WithSendBufferSize(1))
	startHub(t, h)

	clients := make(chan *Client, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(conn, h, r.RemoteAddr)
		clients <- c
		h.Register(c)
	}))
	t.Cleanup(ts.Close)

	// The peer never reads, so the socket backs up and then the queue.
	peer, _, err := th.ConnectWebSocket(th.WebSocketURL(ts.URL), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	var c *Client
	select {
	case c = <-clients:
	case <-time.After(time.Second):
		t.Fatal("server never accepted the connection")
	}
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	big := chat.Event{
		Name:    chat.EventMessage,
		Payload: chat.Message{Username: "bot", Text: strings.Repeat("x", 64<<10), CreatedAt: time.Now()},
	}
	var emitErr error
	for i := 0; i < 10000 && emitErr == nil; i++ {
		emitErr = h.Emit(c.ID(), big)
	}
	require.ErrorIs(t, emitErr, ErrSendBufferFull)

	// Closing the socket makes the read pump unregister, which runs the leave flow.
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.Contains(t, p.Calls(), call{method: "Disconnect", connID: c.ID()})
	require.ErrorIs(t, h.Emit(c.ID(), big), ErrUnknownConnection)
}
