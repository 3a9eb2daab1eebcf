package room

import "encoding/json"

// Client → server event types.
const (
	TypeMove = "move"
	TypeChat = "chat"
)

// Server → client event types.
const (
	TypeInitState    = "init_state"
	TypePlayerJoined = "player_joined"
	TypePlayerLeft   = "player_left"
	TypePlayerMoved  = "player_moved"
	TypeServerError  = "server_error"
)

// ErrorServerFull is the server_error type sent when admission is refused.
const ErrorServerFull = "server_full"

// Event is one outbound message. It is encoded as {"type": ..., "payload": ...}.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Marshal encodes the event for the wire.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Envelope is the inbound form of an event; the payload is decoded once the
// type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PlayerInfo carries the public fields of a participant.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Color     string `json:"color"`
	SpriteURL string `json:"spriteUrl"`
}

// MapInfo describes the room geometry to clients.
type MapInfo struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	PlayerRadius int `json:"playerRadius"`
}

// InitState is sent only to a newly admitted connection.
type InitState struct {
	SelfID     string       `json:"selfId"`
	Players    []PlayerInfo `json:"players"`
	Map        MapInfo      `json:"map"`
	MaxPlayers int          `json:"maxPlayers"`
}

// PlayerLeft announces a departure.
type PlayerLeft struct {
	ID string `json:"id"`
}

// PlayerMoved announces a server-authoritative position.
type PlayerMoved struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// ChatMessage is the broadcast form of a chat line.
type ChatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// ServerError reports a condition that ends the connection.
type ServerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MoveRequest is the payload of an inbound move. Both deltas are kept raw so
// that malformed values can fall back to zero instead of failing the decode.
type MoveRequest struct {
	DX json.RawMessage `json:"dx,omitempty"`
	DY json.RawMessage `json:"dy,omitempty"`
}

// ChatRequest is the payload of an inbound chat line.
type ChatRequest struct {
	Text json.RawMessage `json:"text,omitempty"`
}

// NewMoveRequest builds a MoveRequest from integer deltas.
func NewMoveRequest(dx, dy int) MoveRequest {
	return MoveRequest{DX: intRaw(dx), DY: intRaw(dy)}
}

// NewChatRequest builds a ChatRequest from plain text.
func NewChatRequest(text string) ChatRequest {
	raw, _ := json.Marshal(text)
	return ChatRequest{Text: raw}
}

func intRaw(v int) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

// ServerFullEvent is the rejection sent to a connection refused at capacity.
func ServerFullEvent() Event {
	return Event{
		Type: TypeServerError,
		Payload: ServerError{
			Type:    ErrorServerFull,
			Message: "The room is full. Please try again later.",
		},
	}
}
