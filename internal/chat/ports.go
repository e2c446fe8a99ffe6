//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=../mocks/mock_chat.go -package=mocks
package chat

// Outbound event names.
const (
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomData        = "roomData"
)

// Event is one outbound delivery. Payload is a Message, LocationMessage or
// RoomSnapshot.
type Event struct {
	Name    string
	Payload any
}

// Gateway delivers outbound events to a single connection. Implementations
// must not block on slow recipients.
type Gateway interface {
	Emit(connID string, event Event) error
}

// ProfanityChecker decides whether text violates the content policy.
type ProfanityChecker interface {
	IsProfane(text string) bool
}
