package chat

import (
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Session binds a live connection to the username and room it joined with.
// Username and Room keep the casing the user typed, trimmed.
type Session struct {
	ConnectionID string
	Username     string
	Room         string
}

type entry struct {
	session     Session
	usernameKey string
	roomKey     string
}

// Registry is the authoritative in-memory set of active sessions, keyed by
// connection id. It is safe for concurrent use; every read-modify-write
// sequence runs under a single lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]entry
	order    []string                     // connection ids in insertion order
	rooms    map[string]map[string]string // roomKey -> usernameKey -> connection id
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]entry),
		rooms:    make(map[string]map[string]string),
	}
}

// normalize produces the comparison key for usernames and room names:
// trimmed, NFC-composed and case-folded.
func normalize(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// AddUser inserts a session for connID. It fails with a validation error if
// the trimmed username or room is empty and with ErrUsernameTaken if another
// session in the same room already uses the username.
func (r *Registry) AddUser(connID, username, room string) (Session, error) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)
	if username == "" || room == "" {
		return Session{}, validationError(msgJoinRequired)
	}

	e := entry{
		session:     Session{ConnectionID: connID, Username: username, Room: room},
		usernameKey: normalize(username),
		roomKey:     normalize(room),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connID]; exists {
		return Session{}, validationError(msgAlreadyJoined)
	}

	members, ok := r.rooms[e.roomKey]
	if !ok {
		members = make(map[string]string)
		r.rooms[e.roomKey] = members
	}
	if _, taken := members[e.usernameKey]; taken {
		return Session{}, ErrUsernameTaken
	}

	members[e.usernameKey] = connID
	r.sessions[connID] = e
	r.order = append(r.order, connID)
	return e.session, nil
}

// RemoveUser deletes and returns the session for connID. The boolean is
// false when no session existed, which makes the call idempotent.
func (r *Registry) RemoveUser(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}

	delete(r.sessions, connID)
	r.order = lo.Without(r.order, connID)

	if members, ok := r.rooms[e.roomKey]; ok {
		delete(members, e.usernameKey)
		if len(members) == 0 {
			delete(r.rooms, e.roomKey)
		}
	}
	return e.session, true
}

// GetUser returns the session bound to connID, if any.
func (r *Registry) GetUser(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[connID]
	return e.session, ok
}

// GetUsersInRoom returns every session whose room matches room after
// normalization, in the order they joined.
func (r *Registry) GetUsersInRoom(room string) []Session {
	key := normalize(room)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.rooms[key]; !ok {
		return nil
	}

	return lo.FilterMap(r.order, func(connID string, _ int) (Session, bool) {
		e := r.sessions[connID]
		return e.session, e.roomKey == key
	})
}

// Snapshot computes the current roster of room. The returned Room carries
// the casing given by the caller.
func (r *Registry) Snapshot(room string) RoomSnapshot {
	users := lo.Map(r.GetUsersInRoom(room), func(s Session, _ int) RoomUser {
		return RoomUser{Username: s.Username}
	})
	return RoomSnapshot{Room: strings.TrimSpace(room), Users: users}
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
