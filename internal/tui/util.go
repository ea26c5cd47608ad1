package tui

import (
	"math"
	"path/filepath"
	"strings"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// gridLimit bounds grid indices far outside any terminal.
const gridLimit = 1 << 40

// floorDiv maps a device offset to a grid index, rounding toward -inf so
// geometry left of or above the canvas does not fold onto column 0.
func floorDiv(v, size float64) int {
	f := math.Floor(v / size)
	if math.IsNaN(f) {
		return 0
	}
	return int(max(-gridLimit, min(gridLimit, f)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// siblingPath swaps the extension of path, e.g. zones.json -> zones.geojson.
func siblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
