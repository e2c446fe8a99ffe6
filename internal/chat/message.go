package chat

import (
	"fmt"
	"time"
)

// SystemSender is the reserved display name used for server-generated
// notices. It can never be claimed through Join.
const SystemSender = "Admin Bot 🤖"

// Message is an immutable text message.
type Message struct {
	Username  string
	Text      string
	CreatedAt time.Time
}

// LocationMessage carries a shared location as a map URL.
type LocationMessage struct {
	Username  string
	URL       string
	CreatedAt time.Time
}

// RoomUser is one roster entry of a RoomSnapshot.
type RoomUser struct {
	Username string
}

// RoomSnapshot is a point-in-time roster of a room, computed on demand.
type RoomSnapshot struct {
	Room  string
	Users []RoomUser
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether both components are within their geographic range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// MapURL renders the coordinates as a Google Maps query link.
func (c Coordinates) MapURL() string {
	return fmt.Sprintf("https://google.com/maps?q=%v,%v", c.Latitude, c.Longitude)
}

// Clock returns the server-observed current time.
type Clock func() time.Time

// MessageFactory stamps messages with the time reported by its clock.
type MessageFactory struct {
	now Clock
}

// NewMessageFactory returns a factory using now, or time.Now when nil.
func NewMessageFactory(now Clock) *MessageFactory {
	if now == nil {
		now = time.Now
	}
	return &MessageFactory{now: now}
}

// MakeMessage stamps a text message from username with the current time.
// Text is stored as given; trimming is the caller's concern.
func (f *MessageFactory) MakeMessage(username, text string) Message {
	return Message{Username: username, Text: text, CreatedAt: f.now()}
}

// MakeLocationMessage stamps a shared location link from username with the
// current time.
func (f *MessageFactory) MakeLocationMessage(username, url string) LocationMessage {
	return LocationMessage{Username: username, URL: url, CreatedAt: f.now()}
}
