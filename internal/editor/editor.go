package editor

import (
	"fmt"
	"io"
	"log/slog"

	"zonedit/internal/doc"
	"zonedit/internal/zone"
)

// Editor is the state shared by the canvas, the toolbar and the zone list:
// one store, one controller, one background image reference.
type Editor struct {
	*Controller

	store   *zone.Store
	image   *string
	decoder doc.Decoder
	logger  *slog.Logger
}

// New wires an editor around store.
func New(store *zone.Store, opts Options, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Editor{
		Controller: NewController(store, opts, logger),
		store:      store,
		decoder:    doc.Decoder{NewID: store.NewID, DefaultColor: store.DefaultColor()},
		logger:     logger,
	}
}

func (e *Editor) Store() *zone.Store { return e.store }

// Image returns the opaque background reference.
func (e *Editor) Image() (string, bool) {
	if e.image == nil {
		return "", false
	}
	return *e.image, true
}

// SetImage swaps the background reference. The editor never decodes it.
func (e *Editor) SetImage(ref string) { e.image = &ref }

// ClearAll empties zones and the image together and drops any gesture.
func (e *Editor) ClearAll() {
	e.Cancel()
	e.store.Clear()
	e.image = nil
	e.logger.Info("editor cleared")
}

// Document snapshots the current zones and image.
func (e *Editor) Document() doc.Document {
	d := doc.Document{Zones: e.store.List()}
	if e.image != nil {
		img := *e.image
		d.Image = &img
	}
	return d
}

// Export encodes the current document.
func (e *Editor) Export() ([]byte, error) {
	b, err := doc.Encode(e.Document())
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	e.logger.Info("document exported", "zones", e.store.Len(), "bytes", len(b))
	return b, nil
}

// Import applies an encoded document. Malformed payloads change nothing.
// Present keys replace state; absent keys leave it alone. A zones
// replacement abandons any in-flight gesture.
func (e *Editor) Import(data []byte) error {
	d, err := e.decoder.Decode(data)
	if err != nil {
		e.logger.Warn("import rejected", "error", err)
		return fmt.Errorf("import: %w", err)
	}
	if d.HasZones {
		e.Cancel()
		e.store.ReplaceAll(d.Zones)
	}
	if d.HasImage {
		e.image = d.Image
	}
	e.logger.Info("document imported", "zones", len(d.Zones), "has_zones", d.HasZones, "has_image", d.HasImage)
	return nil
}

// ImportGeoJSON replaces the zones with the polygons of a GeoJSON payload.
// The image is left alone.
func (e *Editor) ImportGeoJSON(data []byte) error {
	zones, err := e.decoder.DecodeGeoJSON(data)
	if err != nil {
		e.logger.Warn("geojson import rejected", "error", err)
		return fmt.Errorf("import geojson: %w", err)
	}
	e.Cancel()
	e.store.ReplaceAll(zones)
	e.logger.Info("geojson imported", "zones", len(zones))
	return nil
}
