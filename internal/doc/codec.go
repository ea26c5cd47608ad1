// Package doc encodes and decodes zone documents.
//
// The wire format is
//
//	{"zones": [{"id", "x", "y", "width", "height", "type", "name", "color",
//	            "points"?, "content"?}, ...],
//	 "image": string|null}
//
// Decode validates the whole payload before returning anything, so a caller
// that applies the result either applies all of it or none of it.
package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

var (
	// ErrMalformed wraps every decode failure.
	ErrMalformed = errors.New("malformed document")
	// ErrUnknownType is returned for zones whose type is not rect, polygon or text.
	ErrUnknownType = errors.New("unknown zone type")
)

// Document is an export/import snapshot.
type Document struct {
	Zones []zone.Zone `json:"zones"`
	Image *string     `json:"image"`
}

// Decoded is the result of Decode. Has* report which top-level keys were
// present; absent keys must leave the corresponding editor state alone.
type Decoded struct {
	Document
	HasZones bool
	HasImage bool
}

// Encode serializes d with two-space indentation. Zones keep their order.
func Encode(d Document) ([]byte, error) {
	if d.Zones == nil {
		d.Zones = []zone.Zone{}
	}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// Decoder turns raw payloads into validated documents.
type Decoder struct {
	// NewID supplies ids for zones that arrive without one.
	NewID func() string
	// DefaultColor fills zones that arrive without a color.
	DefaultColor string
}

// Decode uses a Decoder with uuid ids and zone.DefaultColor.
func Decode(data []byte) (Decoded, error) {
	return Decoder{}.Decode(data)
}

type wireZone struct {
	ID      json.RawMessage `json:"id"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Type    zone.Type       `json:"type"`
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	Points  []geom.Point    `json:"points"`
	Content string          `json:"content"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func (d Decoder) withDefaults() Decoder {
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.DefaultColor == "" {
		d.DefaultColor = zone.DefaultColor
	}
	return d
}

// Decode parses and validates data.
func (d Decoder) Decode(data []byte) (Decoded, error) {
	d = d.withDefaults()
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if raw == nil {
		return Decoded{}, malformed("document is null")
	}
	var out Decoded
	if rz, ok := raw["zones"]; ok {
		zones, err := d.decodeZones(rz)
		if err != nil {
			return Decoded{}, err
		}
		out.Zones, out.HasZones = zones, true
	}
	if ri, ok := raw["image"]; ok {
		if !bytes.Equal(bytes.TrimSpace(ri), []byte("null")) {
			var img string
			if err := json.Unmarshal(ri, &img); err != nil {
				return Decoded{}, malformed("image must be a string or null")
			}
			out.Image = &img
		}
		out.HasImage = true
	}
	return out, nil
}

func (d Decoder) decodeZones(raw json.RawMessage) ([]zone.Zone, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, malformed("zones must be an array, got null")
	}
	var wire []wireZone
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, malformed("zones must be an array of zone objects: %v", err)
	}
	zones := make([]zone.Zone, 0, len(wire))
	ids := make(map[string]int, len(wire))
	for i, w := range wire {
		id, err := d.decodeID(w.ID)
		if err != nil {
			return nil, malformed("zone %d: %v", i, err)
		}
		if j, dup := ids[id]; dup {
			return nil, malformed("zone %d: id %q already used by zone %d", i, id, j)
		}
		ids[id] = i
		z := zone.Zone{
			ID:      id,
			X:       w.X,
			Y:       w.Y,
			Width:   w.Width,
			Height:  w.Height,
			Type:    w.Type,
			Name:    w.Name,
			Color:   w.Color,
			Content: w.Content,
		}
		if z.Color == "" {
			z.Color = d.DefaultColor
		}
		switch z.Type {
		case zone.TypePolygon:
			if geom.DistinctVertices(w.Points) < 3 {
				return nil, malformed("zone %d: polygon needs at least 3 distinct vertices", i)
			}
			z.Points = geom.CloseRing(w.Points)
			bb, _ := geom.BoundsOf(z.Points)
			r := bb.Rect()
			z.X, z.Y, z.Width, z.Height = r.X, r.Y, r.Width, r.Height
		case zone.TypeRect, zone.TypeText:
			if w.Width < 0 || w.Height < 0 {
				return nil, malformed("zone %d: negative size", i)
			}
			z.Points = w.Points
		default:
			return nil, fmt.Errorf("%w: zone %d: %w %q", ErrMalformed, i, ErrUnknownType, w.Type)
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// decodeID accepts string ids and the numeric ids written by older exports.
func (d Decoder) decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return d.NewID(), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if s == "" {
			return d.NewID(), nil
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or number")
	}
	return n.String(), nil
}
