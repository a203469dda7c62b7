package proto

// Inbound is the flat envelope for frames coming from the client.
// Fields irrelevant to a given type are simply left zero; absent or
// blank fields are coerced to defaults by the hub, never rejected.
type Inbound struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Room     string `json:"room,omitempty"`
	Text     string `json:"text,omitempty"`
	To       string `json:"to,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// Inbound frame types.
const (
	TypeJoin       = "join"
	TypeChat       = "chat"
	TypeTyping     = "typing"
	TypeSwitchRoom = "switchRoom"
	TypePM         = "pm"
)

// Outbound frame types.
const (
	TypeJoined = "joined"
	TypeSystem = "system"
	TypeUsers  = "users"
	TypeError  = "error"
)

// UserInfo identifies a participant in user-facing payloads.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Joined confirms a join or room switch to the sender.
type Joined struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Room string `json:"room"`
}

// System is a server-generated notice shown as plain text.
type System struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Chat is a room-wide chat message, also used for private messages
// under TypePM.
type Chat struct {
	Type string   `json:"type"`
	From UserInfo `json:"from"`
	Text string   `json:"text"`
	TS   int64    `json:"ts"`
}

// Typing signals that a user started or stopped typing.
type Typing struct {
	Type     string `json:"type"`
	From     string `json:"from"`
	IsTyping bool   `json:"isTyping"`
}

// Users is a snapshot of a room's current membership.
type Users struct {
	Type  string     `json:"type"`
	Users []UserInfo `json:"users"`
}

// Error describes a protocol-level error reply.
type Error struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
