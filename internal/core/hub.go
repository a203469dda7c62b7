package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relay-server/internal/proto"
)

// Hub is the session directory and routing engine. The transport calls
// Connect/Disconnect around each connection's lifetime and Handle for
// every inbound frame; frames from one connection arrive in order
// because its read loop calls Handle synchronously. All shared state
// lives in the directory behind its lock; the hub itself only queues
// pre-encoded frames on client outboxes and never blocks on I/O.
type Hub struct {
	dir         *Directory
	defaultRoom string
	log         *zerolog.Logger
	now         func() time.Time
}

// NewHub creates a hub with an empty directory. A nil logger disables
// logging.
func NewHub(defaultRoom string, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		dir:         NewDirectory(),
		defaultRoom: defaultRoom,
		log:         logger,
		now:         time.Now,
	}
}

// Connect registers a newly accepted connection. The client stays
// unjoined (no session) until its first join frame.
func (h *Hub) Connect(c *Client) {
	h.log.Debug().Str("client_id", c.ID).Msg("client connected")
}

// Disconnect tears the connection down: the client stops being
// writable, its session is destroyed, and any remaining members of the
// vacated room are notified. Safe to call twice and safe against a
// racing in-flight frame.
func (h *Hub) Disconnect(c *Client) {
	c.Close()

	sess, view, ok := h.dir.DestroySession(c)
	if !ok {
		return
	}
	if sess.Room != "" {
		h.fanout(view.Members, encode(proto.System{
			Type: proto.TypeSystem,
			Text: fmt.Sprintf("%s left %s", sess.Name, sess.Room),
		}), c)
		h.fanout(view.Members, encode(proto.Users{Type: proto.TypeUsers, Users: view.Users}), nil)
	}
	h.log.Info().
		Str("client_id", c.ID).
		Str("name", sess.Name).
		Str("room", sess.Room).
		Msg("client disconnected")
}

// Handle parses one inbound frame and dispatches it. Every failure is
// a per-sender reply; the connection stays open and the directory
// untouched.
func (h *Hub) Handle(c *Client, frame []byte) {
	var in proto.Inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		h.sendError(c, "Invalid JSON")
		return
	}

	switch in.Type {
	case proto.TypeJoin:
		h.handleJoin(c, in)
	case proto.TypeChat:
		h.handleChat(c, in)
	case proto.TypeTyping:
		h.handleTyping(c, in)
	case proto.TypeSwitchRoom:
		h.handleSwitchRoom(c, in)
	case proto.TypePM:
		h.handlePM(c, in)
	default:
		h.sendError(c, "Unknown type: "+in.Type)
	}
}

func (h *Hub) handleJoin(c *Client, in proto.Inbound) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "User_" + c.ID
	}
	room := strings.TrimSpace(in.Room)
	if room == "" {
		room = h.defaultRoom
	}

	if _, ok := h.dir.SessionFor(c); ok {
		// Re-join acts as a room switch plus a name update.
		h.announceLeave(c)
		h.dir.SetName(c, name)
	} else if _, err := h.dir.CreateSession(c, c.ID, name); err != nil {
		h.log.Error().Err(err).Str("client_id", c.ID).Msg("create session")
		return
	}

	h.enterRoom(c, name, room)
	h.log.Info().
		Str("client_id", c.ID).
		Str("name", name).
		Str("room", room).
		Msg("client joined")
}

func (h *Hub) handleChat(c *Client, in proto.Inbound) {
	sess, ok := h.dir.SessionFor(c)
	if !ok {
		h.sendError(c, "Join a room first")
		return
	}

	frame := encode(proto.Chat{
		Type: proto.TypeChat,
		From: proto.UserInfo{ID: sess.ID, Name: sess.Name},
		Text: in.Text,
		TS:   h.now().UnixMilli(),
	})
	h.fanout(h.dir.Members(sess.Room), frame, nil)
}

func (h *Hub) handleTyping(c *Client, in proto.Inbound) {
	sess, ok := h.dir.SessionFor(c)
	if !ok {
		// Unlike chat, a stray typing signal is not worth an error.
		return
	}

	frame := encode(proto.Typing{
		Type:     proto.TypeTyping,
		From:     sess.Name,
		IsTyping: in.IsTyping,
	})
	h.fanout(h.dir.Members(sess.Room), frame, c)
}

func (h *Hub) handleSwitchRoom(c *Client, in proto.Inbound) {
	sess, ok := h.dir.SessionFor(c)
	if !ok {
		h.sendError(c, "Join first")
		return
	}

	room := strings.TrimSpace(in.Room)
	if room == "" {
		room = h.defaultRoom
	}

	h.announceLeave(c)
	h.enterRoom(c, sess.Name, room)
	h.log.Info().
		Str("client_id", c.ID).
		Str("name", sess.Name).
		Str("room", room).
		Msg("client switched room")
}

func (h *Hub) handlePM(c *Client, in proto.Inbound) {
	sess, ok := h.dir.SessionFor(c)
	if !ok {
		return
	}

	to := strings.TrimSpace(in.To)
	target, found := h.dir.FindByDisplayName(to)
	if !found {
		h.sendTo(c, proto.System{
			Type: proto.TypeSystem,
			Text: fmt.Sprintf("User '%s' not found.", to),
		})
		return
	}

	h.sendTo(target, proto.Chat{
		Type: proto.TypePM,
		From: proto.UserInfo{ID: sess.ID, Name: sess.Name},
		Text: in.Text,
		TS:   h.now().UnixMilli(),
	})
}

// enterRoom performs the directory join and the join notifications:
// joined to the sender, system notice to the rest of the room, users
// snapshot to the whole room.
func (h *Hub) enterRoom(c *Client, name, room string) {
	view := h.dir.JoinRoom(c, room)

	h.sendTo(c, proto.Joined{Type: proto.TypeJoined, ID: c.ID, Name: name, Room: room})
	h.fanout(view.Members, encode(proto.System{
		Type: proto.TypeSystem,
		Text: fmt.Sprintf("%s joined %s", name, room),
	}), c)
	h.fanout(view.Members, encode(proto.Users{Type: proto.TypeUsers, Users: view.Users}), nil)
}

// announceLeave removes the client from its current room and notifies
// the members left behind. No-op if the client has no room.
func (h *Hub) announceLeave(c *Client) {
	vacated, view, ok := h.dir.LeaveRoom(c)
	if !ok {
		return
	}

	h.fanout(view.Members, encode(proto.System{
		Type: proto.TypeSystem,
		Text: fmt.Sprintf("%s left %s", vacated.Name, vacated.Room),
	}), c)
	h.fanout(view.Members, encode(proto.Users{Type: proto.TypeUsers, Users: view.Users}), nil)
}

// fanout queues a frame on every member's outbox except the excluded
// one. Unwritable or slow members are skipped silently; cleanup is the
// disconnect path's job, never the sender's.
func (h *Hub) fanout(members []*Client, frame []byte, except *Client) {
	for _, m := range members {
		if m == except {
			continue
		}
		m.TrySend(frame)
	}
}

func (h *Hub) sendTo(c *Client, payload any) {
	c.TrySend(encode(payload))
}

func (h *Hub) sendError(c *Client, text string) {
	h.sendTo(c, proto.Error{Type: proto.TypeError, Text: text})
}

func encode(payload any) []byte {
	frame, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return frame
}
