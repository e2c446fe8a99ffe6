package chat

import "fmt"

// Kind classifies a recoverable failure reported back to the caller.
type Kind int

// Failure kinds. The zero value is not a valid Kind.
const (
	// KindValidation marks missing, malformed or reserved input.
	KindValidation Kind = iota + 1
	// KindUsernameTaken marks a join whose name is already used in the room.
	KindUsernameTaken
	// KindNotFound marks a request from a connection with no session.
	KindNotFound
	// KindProfanity marks a message rejected by the profanity checker.
	KindProfanity
)

// String returns the snake_case name of k, used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUsernameTaken:
		return "username_taken"
	case KindNotFound:
		return "not_found"
	case KindProfanity:
		return "profanity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Registry and Dispatcher operations. Message is the
// human readable text delivered through the acknowledgment path.
type Error struct {
	Kind    Kind
	Message string
}

// Error returns the human readable message.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same Kind, so the sentinels
// below match every error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is. Each matches any *Error of its Kind, whatever the
// message.
var (
	// ErrValidation matches every validation failure.
	ErrValidation = &Error{Kind: KindValidation, Message: "validation failed"}
	// ErrUsernameTaken is returned when a name is already used in the room.
	ErrUsernameTaken = &Error{Kind: KindUsernameTaken, Message: "Username is in use!"}
	// ErrNotFound is returned when the connection has not joined.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "User not found in the system."}
	// ErrProfanity is returned when a message is rejected as profane.
	ErrProfanity = &Error{Kind: KindProfanity, Message: "Profanity is not allowed."}
)

const (
	msgJoinRequired     = "Username and room are required."
	msgReservedName     = "That username is reserved."
	msgEmptyMessage     = "Message cannot be empty."
	msgInvalidLocation  = "Location coordinates are invalid."
	msgUnsupportedEvent = "Unsupported event."
	msgAlreadyJoined    = "Connection has already joined a room."
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

var (
	// ErrUnsupportedEvent is reported for inbound frames the protocol cannot route.
	ErrUnsupportedEvent = validationError(msgUnsupportedEvent)
	// ErrInvalidLocation is reported for coordinates outside their range.
	ErrInvalidLocation = validationError(msgInvalidLocation)
)
