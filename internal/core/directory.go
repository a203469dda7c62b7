package core

import (
	"sort"
	"sync"

	"github.com/vovakirdan/relay-server/internal/proto"
)

// Session is the authoritative record of one joined participant. The
// directory owns every Session; callers only ever see copies.
type Session struct {
	ID   string
	Name string
	Room string
}

// RoomView is a snapshot of one room's membership taken under the
// directory lock, so the fanout targets and the users payload always
// describe the same instant.
type RoomView struct {
	Members []*Client
	Users   []proto.UserInfo
}

// Directory maps connections to sessions and room names to member
// sets. Every operation takes one coarse lock and performs no I/O, so
// the critical sections stay short. Rooms exist exactly while they
// have members.
type Directory struct {
	mu       sync.Mutex
	sessions map[*Client]*Session
	rooms    map[string]map[*Client]struct{}
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		sessions: make(map[*Client]*Session),
		rooms:    make(map[string]map[*Client]struct{}),
	}
}

// CreateSession installs a new session with no room for the
// connection. Returns ErrDuplicateConnection if one already exists.
func (d *Directory) CreateSession(c *Client, id, name string) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.sessions[c]; exists {
		return Session{}, ErrDuplicateConnection
	}
	sess := &Session{ID: id, Name: name}
	d.sessions[c] = sess
	return *sess, nil
}

// SetName updates the session's display name. No-op without a session.
func (d *Directory) SetName(c *Client, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sess, ok := d.sessions[c]; ok {
		sess.Name = name
	}
}

// SessionFor returns a copy of the connection's session, if any.
func (d *Directory) SessionFor(c *Client) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[c]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// JoinRoom adds the connection to a room, creating it on first join,
// and returns the room's membership view after the add. If the session
// already names a room the connection is moved, so it is never in two
// rooms at once. No-op with an empty view if no session exists.
func (d *Directory) JoinRoom(c *Client, room string) RoomView {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[c]
	if !ok {
		return RoomView{}
	}
	if sess.Room != "" {
		d.leaveLocked(c, sess)
	}

	members, ok := d.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		d.rooms[room] = members
	}
	members[c] = struct{}{}
	sess.Room = room

	return d.viewLocked(room)
}

// LeaveRoom removes the connection from its current room and clears
// the session's room field. Returns a copy of the session with the
// vacated room still set, plus the room's view after the removal, so
// the caller can notify the remaining members. Reports false if the
// session has no room (not an error).
func (d *Directory) LeaveRoom(c *Client) (Session, RoomView, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[c]
	if !ok || sess.Room == "" {
		return Session{}, RoomView{}, false
	}

	vacated := *sess
	d.leaveLocked(c, sess)
	return vacated, d.viewLocked(vacated.Room), true
}

// DestroySession removes the connection from its room (if any) and
// deletes its session. Idempotent; reports false on the second call.
func (d *Directory) DestroySession(c *Client) (Session, RoomView, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[c]
	if !ok {
		return Session{}, RoomView{}, false
	}

	removed := *sess
	if sess.Room != "" {
		d.leaveLocked(c, sess)
	}
	delete(d.sessions, c)

	view := RoomView{}
	if removed.Room != "" {
		view = d.viewLocked(removed.Room)
	}
	return removed, view, true
}

// Members returns the live member handles of a room; nil if the room
// does not exist.
func (d *Directory) Members(room string) []*Client {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.viewLocked(room).Members
}

// ListMembers returns a display snapshot of a room's membership, empty
// if the room does not exist. Order is stable for a given snapshot.
func (d *Directory) ListMembers(room string) []proto.UserInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := d.viewLocked(room)
	if view.Users == nil {
		return []proto.UserInfo{}
	}
	return view.Users
}

// FindByDisplayName returns a writable connection whose session has
// the given display name. Names are not unique, so this is first
// match, best effort.
func (d *Directory) FindByDisplayName(name string) (*Client, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for c, sess := range d.sessions {
		if sess.Name == name && c.Writable() {
			return c, true
		}
	}
	return nil, false
}

// leaveLocked removes c from its current room and deletes the room if
// that emptied it. Caller holds the lock and guarantees sess.Room != "".
func (d *Directory) leaveLocked(c *Client, sess *Session) {
	if members, ok := d.rooms[sess.Room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(d.rooms, sess.Room)
		}
	}
	sess.Room = ""
}

// viewLocked builds a RoomView for a room. Caller holds the lock.
func (d *Directory) viewLocked(room string) RoomView {
	members, ok := d.rooms[room]
	if !ok {
		return RoomView{}
	}

	view := RoomView{
		Members: make([]*Client, 0, len(members)),
		Users:   make([]proto.UserInfo, 0, len(members)),
	}
	for c := range members {
		sess, ok := d.sessions[c]
		if !ok {
			continue
		}
		view.Members = append(view.Members, c)
		view.Users = append(view.Users, proto.UserInfo{ID: sess.ID, Name: sess.Name})
	}
	sort.Slice(view.Users, func(i, j int) bool {
		if view.Users[i].Name != view.Users[j].Name {
			return view.Users[i].Name < view.Users[j].Name
		}
		return view.Users[i].ID < view.Users[j].ID
	})
	return view
}
