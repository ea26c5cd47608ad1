package geom

import (
	"errors"
	"strconv"
	"strings"
)

// ParseWKTPolygon parses the outer ring of a WKT POLYGON((x y, ...)).
// Holes are ignored. The returned ring is closed.
func ParseWKTPolygon(wkt string) ([]Point, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	if !strings.HasPrefix(strings.ToUpper(s), "POLYGON") {
		return nil, errors.New("unsupported wkt type")
	}
	i := strings.Index(s, "((")
	j := strings.LastIndex(s, "))")
	if i < 0 || j <= i {
		return nil, errors.New("wkt polygon: invalid")
	}
	// outer ring only
	block := s[i+2 : j]
	if k := strings.Index(block, ")"); k >= 0 {
		block = block[:k]
	}
	var ring []Point
	for _, tup := range strings.Split(block, ",") {
		parts := strings.Fields(strings.TrimSpace(tup))
		if len(parts) < 2 {
			continue
		}
		x, e1 := strconv.ParseFloat(parts[0], 64)
		y, e2 := strconv.ParseFloat(parts[1], 64)
		if e1 != nil || e2 != nil {
			return nil, errors.New("wkt polygon: bad coordinate " + strings.TrimSpace(tup))
		}
		ring = append(ring, Point{X: x, Y: y})
	}
	if DistinctVertices(ring) < 3 {
		return nil, errors.New("wkt polygon: need at least 3 distinct vertices")
	}
	return CloseRing(ring), nil
}

// FormatWKTPolygon renders ring as a WKT POLYGON, closing it if needed.
func FormatWKTPolygon(ring []Point) string {
	ring = CloseRing(ring)
	var b strings.Builder
	b.WriteString("POLYGON((")
	for i, p := range ring {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	b.WriteString("))")
	return b.String()
}
