package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonedit/internal/doc"
	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

func pt(x, y float64) geom.Point { return geom.Point{X: x, Y: y} }

func newTestEditor(opts Options) *Editor {
	return New(zone.NewStore(""), opts, nil)
}

func setMode(t *testing.T, e *Editor, m Mode) {
	t.Helper()
	require.NoError(t, e.SetMode(m))
}

func TestRectGestureCreatesNormalizedZone(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModeRect)

	e.PointerDown(pt(10, 10))
	assert.Equal(t, StateCreatingRect, e.State())
	e.PointerMove(pt(110, 70))
	tmp, ok := e.TempRect()
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 100, Height: 60}, tmp)
	assert.Zero(t, e.Store().Len(), "temp rect must not be persisted")
	e.PointerUp(pt(110, 70))

	zs := e.Store().List()
	require.Len(t, zs, 1)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 100, Height: 60}, zs[0].Bounds())
	assert.Equal(t, zone.TypeRect, zs[0].Type)
	assert.Equal(t, StateIdle, e.State())
}

func TestRectDraggedUpLeftIsNormalized(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModeRect)
	e.PointerDown(pt(110, 70))
	e.PointerMove(pt(10, 10))
	e.PointerUp(pt(10, 10))

	zs := e.Store().List()
	require.Len(t, zs, 1)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 100, Height: 60}, zs[0].Bounds())
}

func TestRectClickWithoutMovementIsDiscarded(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModeRect)
	e.PointerDown(pt(50, 50))
	e.PointerUp(pt(50, 50))
	assert.Zero(t, e.Store().Len())
	assert.Equal(t, StateIdle, e.State())
	_, ok := e.TempRect()
	assert.False(t, ok)
}

func TestPolygonCommitOnDoubleClick(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModePolygon)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(50, 0))
	e.PointerDown(pt(25, 50))
	assert.Equal(t, StateBuildingPolygon, e.State())
	e.DoubleClick(pt(25, 50))

	zs := e.Store().List()
	require.Len(t, zs, 1)
	assert.Equal(t, zone.TypePolygon, zs[0].Type)
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 25, Y: 50}, {X: 0, Y: 0}}, zs[0].Points)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 50, Height: 50}, zs[0].Bounds())
	assert.Empty(t, e.PendingVertices())
	assert.Equal(t, StateIdle, e.State())
}

func TestPolygonDeduplicatesRepeatedClicks(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModePolygon)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(50, 0))
	e.PointerDown(pt(25, 50))
	e.PointerDown(pt(25, 50))
	e.PointerDown(pt(0, 0))
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 25, Y: 50}}, e.PendingVertices())
}

func TestPolygonAcceptsRevisitedInnerVertex(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModePolygon)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(50, 0))
	e.PointerDown(pt(50, 50))
	e.PointerDown(pt(50, 0))
	assert.Equal(t, []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 50, Y: 0}}, e.PendingVertices())
}

func TestPolygonDoubleClickWithTooFewVerticesIsNoop(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModePolygon)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(50, 0))
	e.DoubleClick(pt(50, 0))

	assert.Zero(t, e.Store().Len())
	assert.Len(t, e.PendingVertices(), 2)
	assert.Equal(t, StateBuildingPolygon, e.State())
}

func TestModeSwitchPolygonPolicy(t *testing.T) {
	build := func(e *Editor, n int) {
		setMode(t, e, ModePolygon)
		for _, p := range []geom.Point{pt(0, 0), pt(40, 0), pt(20, 30), pt(0, 30)}[:n] {
			e.PointerDown(p)
		}
	}

	e := newTestEditor(Options{})
	build(e, 3)
	setMode(t, e, ModeSelect)
	assert.Equal(t, 1, e.Store().Len(), "3 vertices commit on switch")
	assert.Empty(t, e.PendingVertices())
	assert.Equal(t, StateIdle, e.State())

	e = newTestEditor(Options{})
	build(e, 2)
	setMode(t, e, ModeRect)
	assert.Zero(t, e.Store().Len(), "2 vertices are discarded")
	assert.Empty(t, e.PendingVertices())

	e = newTestEditor(Options{OnModeSwitch: PolygonDiscard})
	build(e, 4)
	setMode(t, e, ModeHand)
	assert.Zero(t, e.Store().Len())
	assert.Empty(t, e.PendingVertices())

	e = newTestEditor(Options{})
	build(e, 3)
	setMode(t, e, ModePolygon)
	assert.Len(t, e.PendingVertices(), 3, "re-selecting the current mode keeps the construction")
}

func TestModeSwitchDropsTempRect(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModeRect)
	e.PointerDown(pt(0, 0))
	e.PointerMove(pt(40, 40))
	setMode(t, e, ModeSelect)
	assert.Zero(t, e.Store().Len())
	assert.Equal(t, StateIdle, e.State())
}

func TestSetModeRejectsUnknown(t *testing.T) {
	e := newTestEditor(Options{})
	assert.ErrorIs(t, e.SetMode("lasso"), ErrUnknownMode)
	assert.Equal(t, ModeSelect, e.Mode())

	m, err := ParseMode(" Hand ")
	require.NoError(t, err)
	assert.Equal(t, ModeHand, m)
}

func TestTextClickCreatesAndSelects(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModeText)
	e.PointerDown(pt(30, 40))

	zs := e.Store().List()
	require.Len(t, zs, 1)
	assert.Equal(t, zone.TypeText, zs[0].Type)
	assert.Equal(t, geom.Rect{X: 30, Y: 40, Width: 150, Height: 50}, zs[0].Bounds())
	assert.Equal(t, "Text", zs[0].Content)
	assert.Equal(t, zs[0].ID, e.Store().Selected())
	assert.Equal(t, StateIdle, e.State())
}

func TestSelectHandleEntersResizing(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 0, 100, 100, zone.TypeRect, zone.Extra{})

	e.PointerDown(pt(95, 95))
	assert.Equal(t, StateResizing, e.State())
	assert.Equal(t, z.ID, e.Store().Selected())
	e.PointerUp(pt(95, 95))

	e.PointerDown(pt(50, 50))
	assert.Equal(t, StateDragging, e.State())
}

func TestHandleOfFlatZoneDoesNotReachOutside(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 50, 100, 0, zone.TypeRect, zone.Extra{})

	e.PointerDown(pt(95, 45))
	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, e.Store().Selected())

	e.PointerDown(pt(95, 50))
	assert.Equal(t, StateResizing, e.State())
	assert.Equal(t, z.ID, e.Store().Selected())
}

func TestSelectMissClearsSelection(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 0, 100, 100, zone.TypeRect, zone.Extra{})
	e.Store().Select(z.ID)

	e.PointerDown(pt(500, 500))
	assert.Empty(t, e.Store().Selected())
	assert.Equal(t, StateIdle, e.State())
}

func TestSelectPrefersTopmostZone(t *testing.T) {
	e := newTestEditor(Options{})
	s := e.Store()
	s.Create(0, 0, 100, 100, zone.TypeRect, zone.Extra{})
	top := s.Create(50, 50, 100, 100, zone.TypeRect, zone.Extra{})

	e.PointerDown(pt(60, 60))
	assert.Equal(t, top.ID, s.Selected())

	id, ok := e.HitTest(pt(60, 60))
	require.True(t, ok)
	assert.Equal(t, top.ID, id)
}

func TestDragPreservesSize(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 0, 100, 80, zone.TypeRect, zone.Extra{})

	e.PointerDown(pt(50, 40))
	require.Equal(t, StateDragging, e.State())
	for _, p := range []geom.Point{pt(60, 70), pt(-30, 5), pt(200, 0)} {
		e.PointerMove(p)
		got, _ := e.Store().Get(z.ID)
		assert.Equal(t, 100.0, got.Width)
		assert.Equal(t, 80.0, got.Height)
	}
	e.PointerUp(pt(200, 0))

	got, _ := e.Store().Get(z.ID)
	assert.Equal(t, geom.Rect{X: 150, Y: -40, Width: 100, Height: 80}, got.Bounds())
	assert.Equal(t, StateIdle, e.State())
}

func TestResizePreservesPositionAndClamps(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(10, 20, 100, 100, zone.TypeRect, zone.Extra{})

	e.PointerDown(pt(105, 115))
	require.Equal(t, StateResizing, e.State())

	e.PointerMove(pt(160, 140))
	got, _ := e.Store().Get(z.ID)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, Width: 150, Height: 120}, got.Bounds())

	e.PointerMove(pt(0, 0))
	got, _ = e.Store().Get(z.ID)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, Width: 20, Height: 20}, got.Bounds())

	e.PointerUp(pt(15, 200))
	got, _ = e.Store().Get(z.ID)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, Width: 20, Height: 180}, got.Bounds())
}

func TestPolygonDragAndResizeKeepPointsInBox(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModePolygon)
	e.PointerDown(pt(0, 0))
	e.PointerDown(pt(100, 0))
	e.PointerDown(pt(100, 100))
	e.PointerDown(pt(0, 100))
	e.DoubleClick(pt(0, 100))
	setMode(t, e, ModeSelect)
	id := e.Store().List()[0].ID

	e.PointerDown(pt(50, 50))
	e.PointerUp(pt(60, 70))
	got, _ := e.Store().Get(id)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, Width: 100, Height: 100}, got.Bounds())
	assert.Equal(t, geom.Point{X: 10, Y: 20}, got.Points[0])
	bb, _ := geom.BoundsOf(got.Points)
	assert.Equal(t, got.Bounds(), bb.Rect())

	e.PointerDown(pt(105, 115))
	require.Equal(t, StateResizing, e.State())
	e.PointerUp(pt(60, 70))
	got, _ = e.Store().Get(id)
	assert.Equal(t, geom.Rect{X: 10, Y: 20, Width: 50, Height: 50}, got.Bounds())
	bb, _ = geom.BoundsOf(got.Points)
	assert.Equal(t, got.Bounds(), bb.Rect())
	assert.True(t, geom.IsClosed(got.Points))
}

func TestHandPanIsUnboundedAndLeavesZonesAlone(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(5, 5, 50, 50, zone.TypeRect, zone.Extra{})
	setMode(t, e, ModeHand)

	e.PointerDown(pt(100, 100))
	assert.Equal(t, StatePanning, e.State())
	e.PointerMove(pt(130, 90))
	assert.Equal(t, pt(30, -10), e.Pan())
	e.PointerUp(pt(130, 90))
	assert.Equal(t, StateIdle, e.State())

	e.PointerDown(pt(0, 0))
	e.PointerMove(pt(-5000, 10))
	e.PointerUp(pt(-5000, 10))
	assert.Equal(t, pt(-4970, 0), e.Pan())

	got, _ := e.Store().Get(z.ID)
	assert.Equal(t, z, got)
}

// Gestures aimed at the same world positions produce identical zones no
// matter which pan offset and origin are active.
func TestGeometryIndependentOfPan(t *testing.T) {
	shapes := func(origin, pan geom.Point) []geom.Rect {
		e := newTestEditor(Options{})
		e.SetOrigin(origin.X, origin.Y)
		e.SetPan(pan)
		dev := func(x, y float64) geom.Point { return e.Transform().ToScreen(x, y) }

		setMode(t, e, ModeRect)
		e.PointerDown(dev(10, 10))
		e.PointerMove(dev(110, 70))
		e.PointerUp(dev(110, 70))

		setMode(t, e, ModePolygon)
		e.PointerDown(dev(0, 0))
		e.PointerDown(dev(50, 0))
		e.PointerDown(dev(25, 50))
		e.DoubleClick(dev(25, 50))

		setMode(t, e, ModeText)
		e.PointerDown(dev(200, 200))

		var out []geom.Rect
		for _, z := range e.Store().List() {
			out = append(out, z.Bounds())
		}
		return out
	}

	base := shapes(pt(0, 0), pt(0, 0))
	require.Len(t, base, 3)
	assert.Equal(t, base, shapes(pt(0, 0), pt(37, -12)))
	assert.Equal(t, base, shapes(pt(8, 16), pt(-400, 250.5)))
}

func TestTransitionListener(t *testing.T) {
	e := newTestEditor(Options{})
	var seq []State
	e.OnTransition(func(_, next State) { seq = append(seq, next) })

	setMode(t, e, ModeRect)
	e.PointerDown(pt(0, 0))
	e.PointerUp(pt(10, 10))
	assert.Equal(t, []State{StateCreatingRect, StateIdle}, seq)
}

func TestImportMalformedLeavesStateUntouched(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 0, 10, 10, zone.TypeRect, zone.Extra{})
	e.Store().Select(z.ID)
	e.SetImage("data:image/png;base64,AAAA")
	before := e.Store().List()

	err := e.Import([]byte(`{"zones": "not-an-array"}`))
	require.Error(t, err)
	assert.Equal(t, before, e.Store().List())
	assert.Equal(t, z.ID, e.Store().Selected())
	img, ok := e.Image()
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", img)
}

func TestImportNullZonesKeepsStore(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 0, 10, 10, zone.TypeRect, zone.Extra{})
	e.Store().Select(z.ID)

	err := e.Import([]byte(`{"zones": null}`))
	assert.ErrorIs(t, err, doc.ErrMalformed)
	assert.Equal(t, 1, e.Store().Len())
	assert.Equal(t, z.ID, e.Store().Selected())
}

func TestImportOnlyReplacesPresentKeys(t *testing.T) {
	e := newTestEditor(Options{})
	z := e.Store().Create(0, 0, 10, 10, zone.TypeRect, zone.Extra{})
	e.Store().Select(z.ID)
	e.SetImage("ref")

	require.NoError(t, e.Import([]byte(`{"image": "other"}`)))
	assert.Equal(t, 1, e.Store().Len())
	img, _ := e.Image()
	assert.Equal(t, "other", img)

	require.NoError(t, e.Import([]byte(`{"zones": [{"id": "n", "type": "rect", "width": 5, "height": 5}]}`)))
	assert.Equal(t, "n", e.Store().List()[0].ID)
	assert.Empty(t, e.Store().Selected(), "selection must not outlive its zone")
	img, _ = e.Image()
	assert.Equal(t, "other", img)

	require.NoError(t, e.Import([]byte(`{"image": null}`)))
	_, ok := e.Image()
	assert.False(t, ok)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestEditor(Options{})
	setMode(t, src, ModeRect)
	src.PointerDown(pt(10, 10))
	src.PointerUp(pt(60, 40))
	setMode(t, src, ModePolygon)
	src.PointerDown(pt(0, 0))
	src.PointerDown(pt(50, 0))
	src.PointerDown(pt(25, 50))
	src.DoubleClick(pt(25, 50))
	setMode(t, src, ModeText)
	src.PointerDown(pt(300, 300))
	src.SetImage("data:image/png;base64,AAAA")

	b, err := src.Export()
	require.NoError(t, err)

	dst := newTestEditor(Options{})
	require.NoError(t, dst.Import(b))
	assert.Equal(t, src.Document(), dst.Document())
}

func TestClearAll(t *testing.T) {
	e := newTestEditor(Options{})
	setMode(t, e, ModePolygon)
	e.PointerDown(pt(0, 0))
	e.Store().Create(0, 0, 10, 10, zone.TypeRect, zone.Extra{})
	e.SetImage("ref")

	e.ClearAll()
	assert.Zero(t, e.Store().Len())
	_, ok := e.Image()
	assert.False(t, ok)
	assert.Empty(t, e.PendingVertices())
	assert.Equal(t, StateIdle, e.State())
}

func TestImportGeoJSONReplacesZones(t *testing.T) {
	e := newTestEditor(Options{})
	e.Store().Create(0, 0, 10, 10, zone.TypeRect, zone.Extra{})
	e.SetImage("ref")

	require.Error(t, e.ImportGeoJSON([]byte(`{"type": "LineString", "coordinates": [[0,0],[1,1]]}`)))
	assert.Equal(t, 1, e.Store().Len())

	require.NoError(t, e.ImportGeoJSON([]byte(`{"type": "Polygon", "coordinates": [[[0,0],[10,0],[5,8]]]}`)))
	zs := e.Store().List()
	require.Len(t, zs, 1)
	assert.Equal(t, zone.TypePolygon, zs[0].Type)
	img, _ := e.Image()
	assert.Equal(t, "ref", img)
}
