package doc

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

// Columns is the header shared by the CSV export and the zone table.
var Columns = []string{"id", "name", "type", "x", "y", "width", "height", "color", "content", "wkt"}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Row flattens z into values matching Columns.
func Row(z zone.Zone) []string {
	return []string{
		z.ID,
		z.Name,
		string(z.Type),
		num(z.X),
		num(z.Y),
		num(z.Width),
		num(z.Height),
		z.Color,
		z.Content,
		geom.FormatWKTPolygon(Ring(z)),
	}
}

// EncodeCSV writes one header line followed by one row per zone.
func EncodeCSV(zones []zone.Zone) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	for _, z := range zones {
		if err := w.Write(Row(z)); err != nil {
			return nil, fmt.Errorf("encode csv: zone %s: %w", z.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
