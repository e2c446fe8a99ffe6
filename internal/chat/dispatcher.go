package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Dispatcher implements the join, send and disconnect flows. It keeps no
// session state of its own: every call re-reads the Registry by connection id.
//
// Handlers are serialized, so each flow's registry reads, writes and
// outbound emits form one uninterrupted step. Per-recipient ordering then
// follows from the Gateway delivering in Emit order.
type Dispatcher struct {
	mu       sync.Mutex
	registry *Registry
	messages *MessageFactory
	checker  ProfanityChecker
	gateway  Gateway
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for protocol events and delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMessageFactory replaces the default time.Now based factory.
func WithMessageFactory(f *MessageFactory) Option {
	return func(d *Dispatcher) {
		d.messages = f
	}
}

// NewDispatcher wires a dispatcher to its registry, gateway and profanity
// oracle.
func NewDispatcher(registry *Registry, gateway Gateway, checker ProfanityChecker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		messages: NewMessageFactory(nil),
		checker:  checker,
		gateway:  gateway,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "dispatcher")
	return d
}

// Join registers connID under username in room. On success the joiner gets
// a welcome, the rest of the room a join notice, and everyone in the room a
// fresh roster, in that order.
func (d *Dispatcher) Join(connID, username, room string) error {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)
	if username == "" || room == "" {
		return validationError(msgJoinRequired)
	}
	if normalize(username) == normalize(SystemSender) {
		return validationError(msgReservedName)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	session, err := d.registry.AddUser(connID, username, room)
	if err != nil {
		d.logger.Warn("join rejected",
			"conn_id", connID, "username", username, "room", room, "error", err)
		return err
	}
	d.logger.Info("user joined",
		"conn_id", connID, "username", session.Username, "room", session.Room)

	d.emit(connID, Event{
		Name:    EventMessage,
		Payload: d.messages.MakeMessage(SystemSender, fmt.Sprintf("Welcome to the chat, %s! 🎉", session.Username)),
	})
	d.broadcast(session.Room, connID, Event{
		Name:    EventMessage,
		Payload: d.messages.MakeMessage(SystemSender, fmt.Sprintf("%s has joined the room. 👋", session.Username)),
	})
	d.broadcast(session.Room, "", Event{
		Name:    EventRoomData,
		Payload: d.registry.Snapshot(session.Room),
	})
	return nil
}

// SendMessage broadcasts text from connID's session to its whole room,
// sender included. Profane text is answered with a private admonition only.
func (d *Dispatcher) SendMessage(connID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.registry.GetUser(connID)
	if !ok {
		return ErrNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return validationError(msgEmptyMessage)
	}

	if d.checker != nil && d.checker.IsProfane(text) {
		d.logger.Info("message rejected by profanity filter",
			"conn_id", connID, "username", session.Username, "room", session.Room)
		d.emit(connID, Event{
			Name:    EventMessage,
			Payload: d.messages.MakeMessage(SystemSender, "Please refrain from using inappropriate language. 🙏"),
		})
		return ErrProfanity
	}

	d.broadcast(session.Room, "", Event{
		Name:    EventMessage,
		Payload: d.messages.MakeMessage(session.Username, text),
	})
	d.logger.Debug("message sent",
		"conn_id", connID, "username", session.Username, "room", session.Room)
	return nil
}

// SendLocation broadcasts a map link for at to connID's whole room.
func (d *Dispatcher) SendLocation(connID string, at Coordinates) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.registry.GetUser(connID)
	if !ok {
		return ErrNotFound
	}
	if !at.Valid() {
		return ErrInvalidLocation
	}

	d.broadcast(session.Room, "", Event{
		Name:    EventLocationMessage,
		Payload: d.messages.MakeLocationMessage(session.Username, at.MapURL()),
	})
	d.logger.Debug("location shared",
		"conn_id", connID, "username", session.Username, "room", session.Room)
	return nil
}

// Disconnect removes connID's session, if any, and tells the remaining
// members of its room. The departed connection is sent nothing.
func (d *Dispatcher) Disconnect(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.registry.RemoveUser(connID)
	if !ok {
		d.logger.Debug("connection closed without a session", "conn_id", connID)
		return
	}
	d.logger.Info("user left",
		"conn_id", connID, "username", session.Username, "room", session.Room)

	d.broadcast(session.Room, "", Event{
		Name:    EventMessage,
		Payload: d.messages.MakeMessage(SystemSender, fmt.Sprintf("%s has left the room. 🚪", session.Username)),
	})
	d.broadcast(session.Room, "", Event{
		Name:    EventRoomData,
		Payload: d.registry.Snapshot(session.Room),
	})
}

// DisplayName returns the username bound to connID, or connID itself when
// the connection has not joined.
func (d *Dispatcher) DisplayName(connID string) string {
	if session, ok := d.registry.GetUser(connID); ok {
		return session.Username
	}
	return connID
}

// broadcast emits event to every session in room except exclude.
func (d *Dispatcher) broadcast(room, exclude string, event Event) {
	for _, s := range d.registry.GetUsersInRoom(room) {
		if s.ConnectionID == exclude {
			continue
		}
		d.emit(s.ConnectionID, event)
	}
}

func (d *Dispatcher) emit(connID string, event Event) {
	if err := d.gateway.Emit(connID, event); err != nil {
		d.logger.Warn("event delivery failed",
			"conn_id", connID, "event", event.Name, "error", err)
	}
}
