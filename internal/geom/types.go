package geom

// Point is a 2D coordinate. Zone geometry is stored in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Rect converts the bbox to origin + size form.
func (b BBox) Rect() Rect {
	return Rect{X: b.MinX, Y: b.MinY, Width: b.MaxX - b.MinX, Height: b.MaxY - b.MinY}
}

// BoundsOf returns the bounding box of pts. ok is false for an empty slice.
func BoundsOf(pts []Point) (bbox BBox, ok bool) {
	for i, p := range pts {
		if i == 0 {
			bbox = BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			continue
		}
		if p.X < bbox.MinX {
			bbox.MinX = p.X
		}
		if p.Y < bbox.MinY {
			bbox.MinY = p.Y
		}
		if p.X > bbox.MaxX {
			bbox.MaxX = p.X
		}
		if p.Y > bbox.MaxY {
			bbox.MaxY = p.Y
		}
	}
	return bbox, len(pts) > 0
}

// Rect is an axis-aligned box with a top-left origin.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromCorners returns the normalized box spanned by two arbitrary corners.
// Width and Height are never negative.
func RectFromCorners(a, b Point) Rect {
	x, w := a.X, b.X-a.X
	if w < 0 {
		x, w = b.X, -w
	}
	y, h := a.Y, b.Y-a.Y
	if h < 0 {
		y, h = b.Y, -h
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) Origin() Point      { return Point{X: r.X, Y: r.Y} }
func (r Rect) BottomRight() Point { return Point{X: r.X + r.Width, Y: r.Y + r.Height} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// HandleAt returns the grab handle of the given size whose bottom-right
// corner sits on r's bottom-right corner. It never extends past r.
func (r Rect) HandleAt(size float64) Rect {
	br := r.BottomRight()
	w, h := min(size, r.Width), min(size, r.Height)
	return Rect{X: br.X - w, Y: br.Y - h, Width: w, Height: h}
}

// IsClosed reports whether ring ends where it starts.
func IsClosed(ring []Point) bool {
	return len(ring) >= 2 && ring[0] == ring[len(ring)-1]
}

// CloseRing returns ring with its first vertex appended when it is not
// already closed. The input is never modified.
func CloseRing(ring []Point) []Point {
	out := make([]Point, len(ring), len(ring)+1)
	copy(out, ring)
	if len(out) > 0 && !IsClosed(out) {
		out = append(out, out[0])
	}
	return out
}

// DistinctVertices counts unique vertices of ring.
func DistinctVertices(ring []Point) int {
	seen := make(map[Point]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// FitRing maps every point of ring from box from into box to, preserving
// relative position. Degenerate source axes collapse onto the target origin.
func FitRing(ring []Point, from, to Rect) []Point {
	out := make([]Point, len(ring))
	for i, p := range ring {
		nx, ny := 0.0, 0.0
		if from.Width != 0 {
			nx = (p.X - from.X) / from.Width
		}
		if from.Height != 0 {
			ny = (p.Y - from.Y) / from.Height
		}
		out[i] = Point{X: to.X + nx*to.Width, Y: to.Y + ny*to.Height}
	}
	return out
}

// TranslateRing shifts every point of ring by d.
func TranslateRing(ring []Point, d Point) []Point {
	out := make([]Point, len(ring))
	for i, p := range ring {
		out[i] = p.Add(d)
	}
	return out
}
