package room

import "sync"

// Registry is the shared mapping from connection id to Participant. All
// methods are safe for concurrent use and atomic with respect to each other.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]Participant
	capacity     int
}

// NewRegistry creates an empty registry that admits at most capacity
// participants.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxPlayers
	}
	return &Registry{
		participants: make(map[string]Participant, capacity),
		capacity:     capacity,
	}
}

// Capacity returns the maximum number of participants.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Snapshot returns a point-in-time copy of every participant in no
// particular order.
func (r *Registry) Snapshot() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

// Insert stores p under p.ID, replacing any previous entry with the same id.
// A new id is only stored while the registry is below capacity.
func (r *Registry) Insert(p Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.participants[p.ID]; !exists && len(r.participants) >= r.capacity {
		return false
	}
	r.participants[p.ID] = p
	return true
}

// Admit inserts p if the registry has room for it. The capacity check and
// the insert happen under one lock so concurrent admissions can never
// exceed the limit. An id that is already present is left untouched and
// reported as ErrDuplicateParticipant.
func (r *Registry) Admit(p Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.participants[p.ID]; exists {
		return ErrDuplicateParticipant
	}
	if len(r.participants) >= r.capacity {
		return ErrRoomFull
	}
	r.participants[p.ID] = p
	return nil
}

// Get returns the participant stored under id.
func (r *Registry) Get(id string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[id]
	return p, ok
}

// UpdatePosition moves the participant to (x, y) and returns its previous
// position. ok is false when id is not registered.
func (r *Registry) UpdatePosition(id string, x, y int) (prev Position, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok {
		return Position{}, false
	}
	prev = p.Pos
	p.Pos = Position{X: x, Y: y}
	r.participants[id] = p
	return prev, true
}

// Remove deletes the participant stored under id. Removing an absent id is
// a no-op that reports ok == false.
func (r *Registry) Remove(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if ok {
		delete(r.participants, id)
	}
	return p, ok
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// HasCapacity reports whether another participant could be admitted right
// now. The answer may be stale by the time the caller acts on it; use Admit
// to check and insert atomically.
func (r *Registry) HasCapacity() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants) < r.capacity
}
