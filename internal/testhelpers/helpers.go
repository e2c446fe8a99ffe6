// Package testhelpers provides shared utilities for the server's HTTP and
// websocket tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// DefaultTimeout bounds every blocking read in tests.
const DefaultTimeout = 2 * time.Second

// Frame is a decoded outbound frame as a client sees it.
type Frame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// ChatMessage is the data of a "message" frame.
type ChatMessage struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage is the data of a "locationMessage" frame.
type LocationMessage struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// RoomData is the data of a "roomData" frame.
type RoomData struct {
	Room  string `json:"room"`
	Users []struct {
		Username string `json:"username"`
	} `json:"users"`
}

// Usernames lists the roster in order.
func (r RoomData) Usernames() []string {
	names := make([]string, 0, len(r.Users))
	for _, u := range r.Users {
		names = append(names, u.Username)
	}
	return names
}

// WebSocketURL turns an httptest server URL into its /ws endpoint.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// ConnectWebSocket dials url with the given Origin header, if any.
func ConnectWebSocket(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, resp, err
}

// MustConnect dials url and registers the connection for cleanup.
func MustConnect(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := ConnectWebSocket(url, "http://localhost:3000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendEvent writes an inbound frame. A zero ack omits the ack id.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, ack int64, data any) {
	t.Helper()
	frame := map[string]any{"event": event, "data": data}
	if ack != 0 {
		frame["ack"] = ack
	}
	require.NoError(t, conn.WriteJSON(frame))
}

// ReadFrame reads the next frame, failing the test after DefaultTimeout.
func ReadFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(DefaultTimeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame), "frame: %s", raw)
	return frame
}

// ReadEvent reads the next frame and requires it to be event, decoding its
// data into out when out is non-nil.
func ReadEvent(t *testing.T, conn *websocket.Conn, event string, out any) Frame {
	t.Helper()
	frame := ReadFrame(t, conn)
	require.Equal(t, event, frame.Event, "unexpected frame: %+v", frame)
	if out != nil {
		require.NoError(t, json.Unmarshal(frame.Data, out))
	}
	return frame
}

// ReadMessage reads a "message" frame.
func ReadMessage(t *testing.T, conn *websocket.Conn) ChatMessage {
	t.Helper()
	var msg ChatMessage
	ReadEvent(t, conn, "message", &msg)
	return msg
}

// ReadRoomData reads a "roomData" frame.
func ReadRoomData(t *testing.T, conn *websocket.Conn) RoomData {
	t.Helper()
	var data RoomData
	ReadEvent(t, conn, "roomData", &data)
	return data
}

// ReadAck reads an "ack" frame and requires it to carry id.
func ReadAck(t *testing.T, conn *websocket.Conn, id int64) Frame {
	t.Helper()
	frame := ReadEvent(t, conn, "ack", nil)
	require.NotNil(t, frame.Ack)
	require.Equal(t, id, *frame.Ack)
	return frame
}

// ExpectNoFrame requires that nothing arrives on conn within wait.
func ExpectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, raw, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", raw)
}

// MakeRequest executes an HTTP request with a 5 second timeout.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// CloseWebSocket sends a normal close frame and closes conn.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
