package doc

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

func sampleDocument() Document {
	img := "data:image/png;base64,iVBORw0KGgo="
	return Document{
		Zones: []zone.Zone{
			{ID: "a", X: 10, Y: 10, Width: 100, Height: 60, Type: zone.TypeRect, Name: "Zone 1", Color: zone.DefaultColor},
			{
				ID: "b", X: 0, Y: 0, Width: 50, Height: 50, Type: zone.TypePolygon, Name: "Zone 2", Color: "#f00",
				Points: []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 25, Y: 50}, {X: 0, Y: 0}},
			},
			{ID: "c", X: 5, Y: 5, Width: 150, Height: 50, Type: zone.TypeText, Name: "note", Color: "#0f0", Content: "Text"},
		},
		Image: &img,
	}
}

func TestRoundTrip(t *testing.T) {
	d := sampleDocument()
	b, err := Encode(d)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.True(t, got.HasZones)
	assert.True(t, got.HasImage)
	assert.Equal(t, d, got.Document)
}

func TestEncodeFieldNames(t *testing.T) {
	b, err := Encode(Document{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"zones": [], "image": null}`, string(b))

	b, err = Encode(sampleDocument())
	require.NoError(t, err)
	var raw struct {
		Zones []map[string]any `json:"zones"`
	}
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw.Zones, 3)
	assert.NotContains(t, raw.Zones[0], "points")
	assert.NotContains(t, raw.Zones[0], "content")
	assert.Contains(t, raw.Zones[1], "points")
	assert.Equal(t, "Text", raw.Zones[2]["content"])
	for _, k := range []string{"id", "x", "y", "width", "height", "type", "name", "color"} {
		assert.Contains(t, raw.Zones[0], k)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{zones`,
		"not an object":     `[1,2,3]`,
		"null":              `null`,
		"zones not array":   `{"zones": "not-an-array"}`,
		"zones null":        `{"zones": null}`,
		"unknown type":      `{"zones": [{"id": "a", "type": "circle"}]}`,
		"duplicate ids":     `{"zones": [{"id": "a", "type": "rect"}, {"id": "a", "type": "rect"}]}`,
		"short polygon":     `{"zones": [{"id": "a", "type": "polygon", "points": [{"x":0,"y":0},{"x":1,"y":1},{"x":0,"y":0}]}]}`,
		"negative size":     `{"zones": [{"id": "a", "type": "rect", "width": -1}]}`,
		"image not string":  `{"image": 42}`,
		"id not scalar":     `{"zones": [{"id": {}, "type": "rect"}]}`,
		"coordinate string": `{"zones": [{"id": "a", "type": "rect", "x": "1"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err := Decode([]byte(`{"zones": [{"id": "a", "type": "circle"}]}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeMissingKeys(t *testing.T) {
	got, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, got.HasZones)
	assert.False(t, got.HasImage)

	got, err = Decode([]byte(`{"image": null}`))
	require.NoError(t, err)
	assert.False(t, got.HasZones)
	assert.True(t, got.HasImage)
	assert.Nil(t, got.Image)
}

func TestDecodeNormalizesLegacyZones(t *testing.T) {
	dec := Decoder{NewID: func() string { return "generated" }, DefaultColor: "#123456"}
	payload := `{"zones": [
		{"id": 1718000000000, "x": 3, "y": 4, "width": 120, "height": 90, "color": "#60a5fa", "type": "rect"},
		{"type": "polygon", "x": 0, "y": 0, "width": 0, "height": 0,
		 "points": [{"x": 10, "y": 10}, {"x": 30, "y": 10}, {"x": 20, "y": 40}]}
	]}`
	got, err := dec.Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, got.Zones, 2)

	assert.Equal(t, "1718000000000", got.Zones[0].ID)
	assert.Equal(t, "#60a5fa", got.Zones[0].Color)

	poly := got.Zones[1]
	assert.Equal(t, "generated", poly.ID)
	assert.Equal(t, "#123456", poly.Color)
	assert.True(t, geom.IsClosed(poly.Points))
	assert.Len(t, poly.Points, 4)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 20, Height: 30}, poly.Bounds())
}

func TestEncodeGeoJSON(t *testing.T) {
	b, err := EncodeGeoJSON(sampleDocument().Zones)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string         `json:"type"`
				Coordinates [][][2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)

	rect := fc.Features[0]
	assert.Equal(t, "Polygon", rect.Geometry.Type)
	assert.Equal(t, [][2]float64{{10, 10}, {110, 10}, {110, 70}, {10, 70}, {10, 10}}, rect.Geometry.Coordinates[0])
	assert.Equal(t, "rect", rect.Properties["type"])
	assert.NotContains(t, rect.Properties, "content")

	assert.Len(t, fc.Features[1].Geometry.Coordinates[0], 4)
	assert.Equal(t, "Text", fc.Features[2].Properties["content"])
}

func TestEncodeCSV(t *testing.T) {
	b, err := EncodeCSV(sampleDocument().Zones)
	require.NoError(t, err)

	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, Columns, recs[0])
	assert.Equal(t, []string{"a", "Zone 1", "rect", "10", "10", "100", "60", zone.DefaultColor, "", "POLYGON((10 10, 110 10, 110 70, 10 70, 10 10))"}, recs[1])
	assert.Equal(t, "POLYGON((0 0, 50 0, 25 50, 0 0))", recs[2][9])
}

func TestDecodeGeoJSON(t *testing.T) {
	n := 0
	dec := Decoder{NewID: func() string { n++; return fmt.Sprintf("g%d", n) }}
	payload := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "id": "lobby", "properties": {"name": "Lobby", "color": "#f00"},
		 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10]]]}},
		{"type": "Feature", "properties": {"id": "lobby"},
		 "geometry": {"type": "MultiPolygon", "coordinates": [[[[20,20],[30,20],[25,30],[20,20]]], [[[0,0],[1,1],[0,0]]]]}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [5,5]}}
	]}`
	zones, err := dec.DecodeGeoJSON([]byte(payload))
	require.NoError(t, err)
	require.Len(t, zones, 2)

	assert.Equal(t, "lobby", zones[0].ID)
	assert.Equal(t, "Lobby", zones[0].Name)
	assert.Equal(t, "#f00", zones[0].Color)
	assert.True(t, geom.IsClosed(zones[0].Points))
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, zones[0].Bounds())

	assert.Equal(t, "g1", zones[1].ID, "duplicate ids get a fresh one")
	assert.Equal(t, "Zone 2", zones[1].Name)
	assert.Equal(t, zone.DefaultColor, zones[1].Color)
	assert.Equal(t, geom.Rect{X: 20, Y: 20, Width: 10, Height: 10}, zones[1].Bounds())

	_, err = dec.DecodeGeoJSON([]byte(`{"type": "Point", "coordinates": [1, 2]}`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = dec.DecodeGeoJSON([]byte(`nope`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestGeoJSONRoundTrip(t *testing.T) {
	zones := sampleDocument().Zones
	b, err := EncodeGeoJSON(zones)
	require.NoError(t, err)
	got, err := Decoder{}.DecodeGeoJSON(b)
	require.NoError(t, err)
	require.Len(t, got, len(zones))
	for i := range zones {
		assert.Equal(t, zones[i].ID, got[i].ID)
		assert.Equal(t, zones[i].Bounds(), got[i].Bounds())
	}
}
