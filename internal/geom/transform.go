package geom

// Transform maps device pointer coordinates to world coordinates.
// Origin is the canvas position on the device; Pan is the world offset of
// the viewport. Panning changes only what is visible, never stored geometry.
type Transform struct {
	OriginX float64
	OriginY float64
	PanX    float64
	PanY    float64
}

// ToWorld converts a device point to world space.
func (t Transform) ToWorld(dx, dy float64) Point {
	return Point{X: dx - t.OriginX + t.PanX, Y: dy - t.OriginY + t.PanY}
}

// ToScreen is the inverse of ToWorld.
func (t Transform) ToScreen(wx, wy float64) Point {
	return Point{X: wx + t.OriginX - t.PanX, Y: wy + t.OriginY - t.PanY}
}

func (t Transform) Pan() Point { return Point{X: t.PanX, Y: t.PanY} }

func (t *Transform) SetPan(p Point) { t.PanX, t.PanY = p.X, p.Y }
