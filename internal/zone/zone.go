// Package zone holds the zone data model and the store that owns it.
package zone

import (
	"fmt"

	"zonedit/internal/geom"
)

// Type is the geometric kind of a zone.
type Type string

const (
	TypeRect    Type = "rect"
	TypePolygon Type = "polygon"
	TypeText    Type = "text"
)

// Valid reports whether t is one of the known zone types.
func (t Type) Valid() bool {
	switch t {
	case TypeRect, TypePolygon, TypeText:
		return true
	}
	return false
}

// DefaultColor is used when a zone is created without an explicit color.
const DefaultColor = "#60a5fa"

// Zone is one annotated region. Geometry is in world space.
// For polygons X/Y/Width/Height are the bounding box of Points.
type Zone struct {
	ID      string       `json:"id"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Type    Type         `json:"type"`
	Name    string       `json:"name"`
	Color   string       `json:"color"`
	Points  []geom.Point `json:"points,omitempty"`
	Content string       `json:"content,omitempty"`
}

// Bounds returns the zone's bounding box.
func (z Zone) Bounds() geom.Rect {
	return geom.Rect{X: z.X, Y: z.Y, Width: z.Width, Height: z.Height}
}

// Label is the display name, falling back to the id for unnamed zones.
func (z Zone) Label() string {
	if z.Name != "" {
		return z.Name
	}
	return "Zone " + z.ID
}

func (z Zone) clone() Zone {
	if z.Points != nil {
		pts := make([]geom.Point, len(z.Points))
		copy(pts, z.Points)
		z.Points = pts
	}
	return z
}

// DefaultName is the placeholder label for the n-th zone (1-based).
func DefaultName(n int) string { return fmt.Sprintf("Zone %d", n) }

// Extra carries the type-specific and optional fields merged in at creation.
// Empty Name and Color fall back to the defaults.
type Extra struct {
	Points  []geom.Point
	Content string
	Name    string
	Color   string
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	X       *float64
	Y       *float64
	Width   *float64
	Height  *float64
	Name    *string
	Color   *string
	Content *string
	Points  []geom.Point
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

func (p Patch) apply(z *Zone) {
	if p.X != nil {
		z.X = *p.X
	}
	if p.Y != nil {
		z.Y = *p.Y
	}
	if p.Width != nil {
		z.Width = *p.Width
	}
	if p.Height != nil {
		z.Height = *p.Height
	}
	if p.Name != nil {
		z.Name = *p.Name
	}
	if p.Color != nil {
		z.Color = *p.Color
	}
	if p.Content != nil {
		z.Content = *p.Content
	}
	if p.Points != nil {
		z.Points = make([]geom.Point, len(p.Points))
		copy(z.Points, p.Points)
	}
}
