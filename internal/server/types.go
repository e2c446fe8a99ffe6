package server

import (
	"errors"
	"strings"

	"github.com/Tyrowin/roomchat/internal/chat"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSendBufferFull    = errors.New("send buffer full")
)

// Protocol is the chat-level handler the hub routes decoded events to.
// *chat.Dispatcher implements it.
type Protocol interface {
	Join(connID, username, room string) error
	SendMessage(connID, text string) error
	SendLocation(connID string, at chat.Coordinates) error
	Disconnect(connID string)
	DisplayName(connID string) string
}

// inboundMessage is a raw frame read from a client, queued to the hub.
type inboundMessage struct {
	client  *Client
	payload []byte
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
