package editor

import (
	"errors"
	"strings"
)

// Mode is the active tool.
type Mode string

const (
	ModeSelect  Mode = "select"
	ModeRect    Mode = "rect"
	ModePolygon Mode = "polygon"
	ModeText    Mode = "text"
	ModeHand    Mode = "hand"
)

// Modes lists the tools in toolbar order.
var Modes = []Mode{ModeSelect, ModeRect, ModePolygon, ModeText, ModeHand}

// ErrUnknownMode is returned for tool tokens outside Modes.
var ErrUnknownMode = errors.New("unknown mode")

// ParseMode maps a toolbar token to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", ErrUnknownMode
}

// State is the controller's gesture state.
type State int

const (
	StateIdle State = iota
	StateCreatingRect
	StateBuildingPolygon
	StateDragging
	StateResizing
	StatePanning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreatingRect:
		return "creating-rect"
	case StateBuildingPolygon:
		return "building-polygon"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StatePanning:
		return "panning"
	default:
		return "unknown"
	}
}

// PolygonPolicy decides what happens to pending polygon vertices when the
// tool changes mid-construction.
type PolygonPolicy string

const (
	// PolygonCommit commits the pending polygon when it has 3+ vertices and
	// discards it otherwise.
	PolygonCommit PolygonPolicy = "commit"
	// PolygonDiscard always drops the pending vertices.
	PolygonDiscard PolygonPolicy = "discard"
)

// Options tunes the controller geometry. Zero values take the defaults.
type Options struct {
	TextWidth       float64
	TextHeight      float64
	TextPlaceholder string
	HandleSize      float64
	MinSize         float64
	OnModeSwitch    PolygonPolicy
}

// DefaultOptions returns the stock editor geometry.
func DefaultOptions() Options {
	return Options{
		TextWidth:       150,
		TextHeight:      50,
		TextPlaceholder: "Text",
		HandleSize:      10,
		MinSize:         20,
		OnModeSwitch:    PolygonCommit,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TextWidth <= 0 {
		o.TextWidth = d.TextWidth
	}
	if o.TextHeight <= 0 {
		o.TextHeight = d.TextHeight
	}
	if o.TextPlaceholder == "" {
		o.TextPlaceholder = d.TextPlaceholder
	}
	if o.HandleSize <= 0 {
		o.HandleSize = d.HandleSize
	}
	if o.MinSize <= 0 {
		o.MinSize = d.MinSize
	}
	if o.OnModeSwitch != PolygonDiscard {
		o.OnModeSwitch = PolygonCommit
	}
	return o
}

// TransitionListener is called on every state change.
type TransitionListener func(prev, next State)
