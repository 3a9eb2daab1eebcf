package room

import "fmt"

// AvatarCount is the number of sprite sheets a participant can be assigned.
const AvatarCount = 6

// Palette holds the colors handed out to participants on admission.
var Palette = []string{
	"#e6194B", "#3cb44b", "#ffe119", "#0082c8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#d2f53c", "#fabebe",
	"#008080", "#e6beff", "#aa6e28", "#fffac8", "#800000",
	"#aaffc3", "#808000", "#ffd8b1", "#000080", "#808080",
}

// Position is an integer point on the room map.
type Position struct {
	X int
	Y int
}

// Participant is the server-side record of one admitted connection.
// Color and Avatar are chosen at admission and never change.
type Participant struct {
	ID     string
	Name   string
	Pos    Position
	Color  string
	Avatar int
}

// SpriteURL returns the static asset path for the participant's avatar.
func (p Participant) SpriteURL() string {
	return SpriteURL(p.Avatar)
}

// SpriteURL maps an avatar reference (1..AvatarCount) to its asset path.
func SpriteURL(avatar int) string {
	return fmt.Sprintf("/static/sprites/%d.png", avatar)
}

// Public returns the fields every client is allowed to see.
func (p Participant) Public() PlayerInfo {
	return PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		X:         p.Pos.X,
		Y:         p.Pos.Y,
		Color:     p.Color,
		SpriteURL: p.SpriteURL(),
	}
}
