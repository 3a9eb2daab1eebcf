// Package room holds the authoritative state of the shared play area: who is
// present, where they stand, and which events a change produces.
//
// Handlers in this package never touch the network. Each one computes the
// next state, updates the Registry and returns the Event that should be
// published; delivering that event is the caller's job.
package room

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
)

var (
	// ErrRoomFull is returned by Admit when the room is at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrDuplicateParticipant is returned by Admit for an id that is already present.
	ErrDuplicateParticipant = errors.New("participant already present")
)

// Room combines the registry with the immutable room configuration.
type Room struct {
	cfg      Config
	registry *Registry

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customizes a Room.
type Option func(*Room)

// WithRand makes spawn positions and appearance deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(r *Room) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// New creates an empty room.
func New(cfg Config, opts ...Option) *Room {
	cfg = cfg.sanitize()
	r := &Room{
		cfg:      cfg,
		registry: NewRegistry(cfg.MaxPlayers),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the room configuration.
func (r *Room) Config() Config {
	return r.cfg
}

// Registry exposes the participant registry.
func (r *Room) Registry() *Registry {
	return r.registry
}

// Admit registers a new participant for connection id. The name is
// sanitized, the spawn point and appearance are drawn at random, and the
// capacity check and insert happen atomically. ErrRoomFull is returned
// without touching the registry when the room has no space, and
// ErrDuplicateParticipant when id is already taken.
func (r *Room) Admit(id, rawName string) (Participant, error) {
	if !r.registry.HasCapacity() {
		return Participant{}, ErrRoomFull
	}

	p := r.spawn(id, SanitizeName(rawName))
	if err := r.registry.Admit(p); err != nil {
		return Participant{}, err
	}
	return p, nil
}

func (r *Room) spawn(id, name string) Participant {
	rad := r.cfg.PlayerRadius

	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	return Participant{
		ID:   id,
		Name: name,
		Pos: Position{
			X: rad + r.rng.IntN(r.cfg.MapWidth-2*rad+1),
			Y: rad + r.rng.IntN(r.cfg.MapHeight-2*rad+1),
		},
		Color:  Palette[r.rng.IntN(len(Palette))],
		Avatar: 1 + r.rng.IntN(AvatarCount),
	}
}

// InitState builds the init_state event for a newly admitted connection
// from a fresh registry snapshot.
func (r *Room) InitState(selfID string) Event {
	snapshot := r.registry.Snapshot()
	players := make([]PlayerInfo, 0, len(snapshot))
	for _, p := range snapshot {
		players = append(players, p.Public())
	}

	return Event{
		Type: TypeInitState,
		Payload: InitState{
			SelfID:  selfID,
			Players: players,
			Map: MapInfo{
				Width:        r.cfg.MapWidth,
				Height:       r.cfg.MapHeight,
				PlayerRadius: r.cfg.PlayerRadius,
			},
			MaxPlayers: r.cfg.MaxPlayers,
		},
	}
}

// Joined builds the player_joined announcement for p.
func Joined(p Participant) Event {
	return Event{Type: TypePlayerJoined, Payload: p.Public()}
}

// Move applies a movement request from connection id. It reports false when
// nothing should be published: the sender is unknown, or the clamped
// destination equals the current position.
func (r *Room) Move(id string, req MoveRequest) (Event, bool) {
	p, ok := r.registry.Get(id)
	if !ok {
		return Event{}, false
	}

	// Deltas beyond the map size land on the same wall, and bounding them
	// keeps the addition from overflowing.
	dx := clampAxis(intLike(req.DX), -r.cfg.MapWidth, r.cfg.MapWidth)
	dy := clampAxis(intLike(req.DY), -r.cfg.MapHeight, r.cfg.MapHeight)

	x, y := Clamp(p.Pos.X+dx, p.Pos.Y+dy, r.cfg.PlayerRadius, r.cfg.MapWidth, r.cfg.MapHeight)
	if x == p.Pos.X && y == p.Pos.Y {
		return Event{}, false
	}

	// Only the owning connection moves a participant, so the position read
	// above is still current unless the participant has left.
	if _, ok := r.registry.UpdatePosition(id, x, y); !ok {
		return Event{}, false
	}

	return Event{Type: TypePlayerMoved, Payload: PlayerMoved{ID: id, X: x, Y: y}}, true
}

// Chat turns a chat request into a broadcast line. Empty text and unknown
// senders produce nothing; long text is truncated to MaxChatLength runes.
func (r *Room) Chat(id string, req ChatRequest) (Event, bool) {
	p, ok := r.registry.Get(id)
	if !ok {
		return Event{}, false
	}

	text := strings.TrimSpace(textLike(req.Text))
	if text == "" {
		return Event{}, false
	}

	return Event{
		Type:    TypeChat,
		Payload: ChatMessage{From: p.Name, Text: truncateRunes(text, MaxChatLength)},
	}, true
}

// Leave removes connection id from the room. The player_left event is only
// produced when a participant was actually removed.
func (r *Room) Leave(id string) (Event, bool) {
	if _, ok := r.registry.Remove(id); !ok {
		return Event{}, false
	}
	return Event{Type: TypePlayerLeft, Payload: PlayerLeft{ID: id}}, true
}

// Dispatch decodes an inbound frame from connection id and routes it. Frames
// that cannot be decoded and unknown event types are ignored.
func (r *Room) Dispatch(id string, raw []byte) (Event, bool) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, false
	}

	switch env.Type {
	case TypeMove:
		var req MoveRequest
		if len(env.Payload) > 0 {
			// A payload of the wrong shape leaves both deltas at zero.
			_ = json.Unmarshal(env.Payload, &req)
		}
		return r.Move(id, req)
	case TypeChat:
		var req ChatRequest
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				return Event{}, false
			}
		}
		return r.Chat(id, req)
	default:
		return Event{}, false
	}
}
