package domain

import "time"

type ProfileColor int

const (
	ColorUnassigned ProfileColor = iota
	ColorRed
	ColorBlue
	ColorGreen
	ColorYellow
)

// Colors assignable to players of one room. ColorUnassigned is the zero
// value and is never handed out.
var PlayerColors = []ProfileColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}

func (c ProfileColor) Valid() bool {
	return c >= ColorRed && c <= ColorYellow
}

func (c ProfileColor) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	default:
		return "unassigned"
	}
}

type Player struct {
	Id               string
	Name             string
	RoomCode         string
	ProfileColor     ProfileColor
	UrlProfileImage  string
	Score            int
	BracketsPosition int
	CreatedAt        time.Time
}
