package doc

import (
	"encoding/json"
	"fmt"

	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

type geoFeatureCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

type geoFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   geoGeometry    `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Ring returns the closed outline of z: the polygon points for polygons,
// the bounding box corners otherwise.
func Ring(z zone.Zone) []geom.Point {
	if z.Type == zone.TypePolygon && len(z.Points) > 0 {
		return geom.CloseRing(z.Points)
	}
	r := z.Bounds()
	br := r.BottomRight()
	return []geom.Point{
		{X: r.X, Y: r.Y},
		{X: br.X, Y: r.Y},
		{X: br.X, Y: br.Y},
		{X: r.X, Y: br.Y},
		{X: r.X, Y: r.Y},
	}
}

// EncodeGeoJSON exports zones as a FeatureCollection of Polygon features in
// world coordinates. Zone attributes go into the feature properties.
func EncodeGeoJSON(zones []zone.Zone) ([]byte, error) {
	fc := geoFeatureCollection{Type: "FeatureCollection", Features: make([]geoFeature, 0, len(zones))}
	for _, z := range zones {
		ring := Ring(z)
		coords := make([][2]float64, len(ring))
		for i, p := range ring {
			coords[i] = [2]float64{p.X, p.Y}
		}
		props := map[string]any{
			"id":    z.ID,
			"name":  z.Name,
			"type":  string(z.Type),
			"color": z.Color,
		}
		if z.Type == zone.TypeText {
			props["content"] = z.Content
		}
		fc.Features = append(fc.Features, geoFeature{
			Type:       "Feature",
			ID:         z.ID,
			Geometry:   geoGeometry{Type: "Polygon", Coordinates: [][][2]float64{coords}},
			Properties: props,
		})
	}
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return b, nil
}

// DecodeGeoJSON reads polygon zones from a GeoJSON Feature,
// FeatureCollection or bare geometry. Each outer ring of a Polygon or
// MultiPolygon becomes one polygon zone; other geometry types and rings
// with fewer than 3 distinct vertices are skipped. The properties id, name
// and color are kept when usable.
func (d Decoder) DecodeGeoJSON(data []byte) ([]zone.Zone, error) {
	d = d.withDefaults()
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	var zones []zone.Zone
	seen := map[string]bool{}
	addRing := func(v any, props map[string]any) {
		ring, ok := parseRing(v)
		if !ok {
			return
		}
		ring = geom.CloseRing(ring)
		bb, _ := geom.BoundsOf(ring)
		r := bb.Rect()
		z := zone.Zone{
			X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			Type:   zone.TypePolygon,
			Points: ring,
			Color:  d.DefaultColor,
		}
		if id, _ := props["id"].(string); id != "" && !seen[id] {
			z.ID = id
		} else {
			z.ID = d.NewID()
		}
		seen[z.ID] = true
		if name, _ := props["name"].(string); name != "" {
			z.Name = name
		} else {
			z.Name = zone.DefaultName(len(zones) + 1)
		}
		if c, _ := props["color"].(string); c != "" {
			z.Color = c
		}
		zones = append(zones, z)
	}
	walkGeom := func(g map[string]any, props map[string]any) {
		gt, _ := g["type"].(string)
		switch gt {
		case "Polygon":
			if rings, ok := g["coordinates"].([]any); ok && len(rings) > 0 {
				addRing(rings[0], props)
			}
		case "MultiPolygon":
			polys, _ := g["coordinates"].([]any)
			for _, p := range polys {
				if rings, ok := p.([]any); ok && len(rings) > 0 {
					addRing(rings[0], props)
				}
			}
		}
	}
	walkFeature := func(f map[string]any) {
		g, ok := f["geometry"].(map[string]any)
		if !ok {
			return
		}
		props, _ := f["properties"].(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		if _, ok := props["id"]; !ok {
			if id, ok := f["id"].(string); ok {
				props["id"] = id
			}
		}
		walkGeom(g, props)
	}
	t, _ := raw["type"].(string)
	switch t {
	case "Feature":
		walkFeature(raw)
	case "FeatureCollection":
		fs, _ := raw["features"].([]any)
		for _, f := range fs {
			if fm, ok := f.(map[string]any); ok {
				walkFeature(fm)
			}
		}
	default:
		walkGeom(raw, nil)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("%w: no polygons found", ErrMalformed)
	}
	return zones, nil
}

func parseRing(v any) ([]geom.Point, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	var pts []geom.Point
	for _, el := range arr {
		a, ok := el.([]any)
		if !ok || len(a) < 2 {
			continue
		}
		x, xok := a[0].(float64)
		y, yok := a[1].(float64)
		if xok && yok {
			pts = append(pts, geom.Point{X: x, Y: y})
		}
	}
	if geom.DistinctVertices(pts) < 3 {
		return nil, false
	}
	return pts, true
}
