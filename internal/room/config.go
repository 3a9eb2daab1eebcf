package room

// Room defaults shared by the server and the browser client.
const (
	DefaultMapWidth     = 900
	DefaultMapHeight    = 600
	DefaultPlayerRadius = 14
	DefaultMaxPlayers   = 10

	MaxChatLength = 300
	MaxNameLength = 20
)

// Config describes the geometry and capacity of a room. A Room copies it at
// construction time and never changes it afterwards.
type Config struct {
	MapWidth     int
	MapHeight    int
	PlayerRadius int
	MaxPlayers   int
}

// DefaultConfig returns the standard 900x600 room for ten players.
func DefaultConfig() Config {
	return Config{
		MapWidth:     DefaultMapWidth,
		MapHeight:    DefaultMapHeight,
		PlayerRadius: DefaultPlayerRadius,
		MaxPlayers:   DefaultMaxPlayers,
	}
}

// sanitize replaces unusable values with defaults. A radius that leaves no
// playable area is shrunk so that the clamped rectangle is never inverted.
func (c Config) sanitize() Config {
	if c.MapWidth <= 0 {
		c.MapWidth = DefaultMapWidth
	}
	if c.MapHeight <= 0 {
		c.MapHeight = DefaultMapHeight
	}
	if c.PlayerRadius < 0 {
		c.PlayerRadius = DefaultPlayerRadius
	}
	if limit := min(c.MapWidth, c.MapHeight) / 2; c.PlayerRadius > limit {
		c.PlayerRadius = limit
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = DefaultMaxPlayers
	}
	return c
}
