package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Inbound event names.
const (
	EventJoin         = "join"
	EventSendMessage  = "sendMessage"
	EventSendLocation = "sendLocation"
	EventAck          = "ack"
)

// inboundFrame is the JSON envelope sent by clients. Ack is an optional
// client-chosen id echoed back on the acknowledgment frame.
type inboundFrame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// outboundFrame carries both server events and acknowledgments.
type outboundFrame struct {
	Event string `json:"event"`
	Ack   *int64 `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type locationPayload struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type messagePayload struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

type locationMessagePayload struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

type roomUserPayload struct {
	Username string `json:"username"`
}

type roomDataPayload struct {
	Room  string            `json:"room"`
	Users []roomUserPayload `json:"users"`
}

// request is a decoded inbound frame.
type request struct {
	event    string
	ack      *int64
	join     joinPayload
	text     string
	location chat.Coordinates
}

var payloadValidator = validator.New()

// decodeRequest parses a raw frame. The returned request carries the ack id
// whenever the envelope itself could be read, even if the payload is bad.
func decodeRequest(raw []byte) (request, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return request{}, chat.ErrUnsupportedEvent
	}

	req := request{event: frame.Event, ack: frame.Ack}
	switch frame.Event {
	case EventJoin:
		if err := json.Unmarshal(frame.Data, &req.join); err != nil {
			return req, chat.ErrUnsupportedEvent
		}
	case EventSendMessage:
		if err := json.Unmarshal(frame.Data, &req.text); err != nil {
			return req, chat.ErrUnsupportedEvent
		}
	case EventSendLocation:
		var p locationPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return req, chat.ErrUnsupportedEvent
		}
		if err := payloadValidator.Struct(p); err != nil {
			return req, chat.ErrInvalidLocation
		}
		req.location = chat.Coordinates{Latitude: *p.Latitude, Longitude: *p.Longitude}
	default:
		return req, chat.ErrUnsupportedEvent
	}
	return req, nil
}

// encodeEvent renders a chat event as an outbound frame.
func encodeEvent(event chat.Event) ([]byte, error) {
	var data any
	switch p := event.Payload.(type) {
	case chat.Message:
		data = messagePayload{Username: p.Username, Text: p.Text, CreatedAt: p.CreatedAt.UnixMilli()}
	case chat.LocationMessage:
		data = locationMessagePayload{Username: p.Username, URL: p.URL, CreatedAt: p.CreatedAt.UnixMilli()}
	case chat.RoomSnapshot:
		users := make([]roomUserPayload, 0, len(p.Users))
		for _, u := range p.Users {
			users = append(users, roomUserPayload{Username: u.Username})
		}
		data = roomDataPayload{Room: p.Room, Users: users}
	default:
		return nil, fmt.Errorf("unsupported payload %T for event %q", event.Payload, event.Name)
	}
	return json.Marshal(outboundFrame{Event: event.Name, Data: data})
}

// encodeAck renders the acknowledgment for request id. A nil err is a
// success; chat errors carry their message, anything else a generic one.
func encodeAck(id int64, err error) ([]byte, error) {
	frame := outboundFrame{Event: EventAck, Ack: &id}
	if err != nil {
		frame.Error = ackMessage(err)
	}
	return json.Marshal(frame)
}

func ackMessage(err error) string {
	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		return chatErr.Message
	}
	return "Something went wrong."
}
