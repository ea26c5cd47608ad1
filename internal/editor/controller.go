package editor

import (
	"io"
	"log/slog"
	"math"

	"zonedit/internal/geom"
	"zonedit/internal/zone"
)

// Controller turns pointer events into zone operations. It holds the only
// transient drawing state (temp rect, pending polygon, drag/resize/pan
// anchors); everything committed lives in the store.
//
// All event points are device coordinates. The controller is not safe for
// concurrent use; callers feed it from a single event loop.
type Controller struct {
	store  *zone.Store
	opts   Options
	logger *slog.Logger
	tr     geom.Transform

	mode  Mode
	state State

	// CreatingRect: world anchor and the normalized temp box.
	// Panning: device point minus pan at grab time.
	anchor geom.Point
	temp   geom.Rect

	pending []geom.Point
	cursor  geom.Point

	// Dragging / Resizing
	target      string
	grab        geom.Point
	startBox    geom.Rect
	startPoints []geom.Point

	listeners []TransitionListener
}

// NewController returns an idle controller in select mode.
func NewController(store *zone.Store, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{store: store, opts: opts.withDefaults(), logger: logger, mode: ModeSelect}
}

func (c *Controller) Mode() Mode                { return c.mode }
func (c *Controller) State() State              { return c.state }
func (c *Controller) Options() Options          { return c.opts }
func (c *Controller) Transform() geom.Transform { return c.tr }
func (c *Controller) Pan() geom.Point           { return c.tr.Pan() }

// Cursor is the last pointer position in world space.
func (c *Controller) Cursor() geom.Point { return c.cursor }

// TempRect returns the uncommitted rectangle while in CreatingRect.
func (c *Controller) TempRect() (geom.Rect, bool) {
	return c.temp, c.state == StateCreatingRect
}

// PendingVertices returns a copy of the polygon under construction.
func (c *Controller) PendingVertices() []geom.Point {
	out := make([]geom.Point, len(c.pending))
	copy(out, c.pending)
	return out
}

// SetOrigin moves the canvas origin in device space.
func (c *Controller) SetOrigin(x, y float64) { c.tr.OriginX, c.tr.OriginY = x, y }

// SetPan sets the pan offset directly, e.g. for keyboard scrolling.
func (c *Controller) SetPan(p geom.Point) { c.tr.SetPan(p) }

// ToWorld converts a device point using the current origin and pan.
func (c *Controller) ToWorld(p geom.Point) geom.Point { return c.tr.ToWorld(p.X, p.Y) }

// OnTransition registers a state change listener.
func (c *Controller) OnTransition(l TransitionListener) { c.listeners = append(c.listeners, l) }

func (c *Controller) transition(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	c.logger.Debug("editor state transition", "from", prev.String(), "to", next.String(), "mode", string(c.mode))
	for _, l := range c.listeners {
		l(prev, next)
	}
}

// SetMode switches the active tool. An in-flight gesture is resolved first:
// a pending polygon follows Options.OnModeSwitch, a temp rect is dropped,
// and drag/resize/pan end where they are.
func (c *Controller) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	if m == c.mode {
		return nil
	}
	switch c.state {
	case StateBuildingPolygon:
		if c.opts.OnModeSwitch == PolygonCommit && len(c.pending) >= 3 {
			c.commitPolygon()
		} else {
			c.logger.Debug("pending polygon discarded", "vertices", len(c.pending))
			c.pending = nil
		}
	case StateCreatingRect:
		c.temp = geom.Rect{}
	}
	c.endGesture()
	c.logger.Debug("mode switched", "from", string(c.mode), "to", string(m))
	c.mode = m
	return nil
}

// Cancel abandons any in-flight gesture without committing it.
func (c *Controller) Cancel() {
	c.pending = nil
	c.temp = geom.Rect{}
	c.endGesture()
}

func (c *Controller) endGesture() {
	c.target = ""
	c.startPoints = nil
	c.transition(StateIdle)
}

// PointerDown handles a button press at device point p.
func (c *Controller) PointerDown(p geom.Point) {
	w := c.ToWorld(p)
	c.cursor = w
	switch c.mode {
	case ModeHand:
		c.anchor = p.Sub(c.tr.Pan())
		c.transition(StatePanning)
	case ModePolygon:
		c.addVertex(w)
	case ModeText:
		z := c.store.Create(w.X, w.Y, c.opts.TextWidth, c.opts.TextHeight, zone.TypeText, zone.Extra{Content: c.opts.TextPlaceholder})
		c.store.Select(z.ID)
		c.logger.Info("text zone created", "id", z.ID, "x", z.X, "y", z.Y)
	case ModeRect:
		c.anchor = w
		c.temp = geom.Rect{X: w.X, Y: w.Y}
		c.transition(StateCreatingRect)
	case ModeSelect:
		c.grabAt(w)
	}
}

// PointerMove handles pointer motion at device point p.
func (c *Controller) PointerMove(p geom.Point) {
	w := c.ToWorld(p)
	c.cursor = w
	switch c.state {
	case StatePanning:
		c.tr.SetPan(p.Sub(c.anchor))
	case StateCreatingRect:
		c.temp = geom.RectFromCorners(c.anchor, w)
	case StateDragging:
		c.dragTo(w)
	case StateResizing:
		c.resizeTo(w)
	}
}

// PointerUp handles a button release at device point p.
func (c *Controller) PointerUp(p geom.Point) {
	switch c.state {
	case StatePanning, StateDragging, StateResizing:
		c.PointerMove(p)
		c.endGesture()
	case StateCreatingRect:
		c.PointerMove(p)
		r := c.temp
		c.temp = geom.Rect{}
		if r.Width > 0 {
			z := c.store.Create(r.X, r.Y, r.Width, r.Height, zone.TypeRect, zone.Extra{})
			c.logger.Info("rect zone created", "id", z.ID, "x", z.X, "y", z.Y, "width", z.Width, "height", z.Height)
		}
		c.endGesture()
	}
}

// DoubleClick finishes a polygon with at least 3 pending vertices. With
// fewer it does nothing, keeping the vertices.
func (c *Controller) DoubleClick(p geom.Point) {
	c.cursor = c.ToWorld(p)
	c.FinishPolygon()
}

// FinishPolygon commits the pending polygon if it has 3+ vertices.
func (c *Controller) FinishPolygon() bool {
	if c.mode != ModePolygon || len(c.pending) < 3 {
		return false
	}
	c.commitPolygon()
	c.transition(StateIdle)
	return true
}

func (c *Controller) addVertex(w geom.Point) {
	if n := len(c.pending); n > 0 && (w == c.pending[0] || w == c.pending[n-1]) {
		return
	}
	c.pending = append(c.pending, w)
	c.transition(StateBuildingPolygon)
}

func (c *Controller) commitPolygon() {
	ring := geom.CloseRing(c.pending)
	c.pending = nil
	bb, _ := geom.BoundsOf(ring)
	r := bb.Rect()
	z := c.store.Create(r.X, r.Y, r.Width, r.Height, zone.TypePolygon, zone.Extra{Points: ring})
	c.logger.Info("polygon zone created", "id", z.ID, "vertices", len(ring)-1)
}

// hit finds the topmost zone under w. handle reports a hit on the
// bottom-right resize handle rather than the body.
func (c *Controller) hit(w geom.Point) (z zone.Zone, handle, ok bool) {
	zones := c.store.List()
	for i := len(zones) - 1; i >= 0; i-- {
		b := zones[i].Bounds()
		if b.HandleAt(c.opts.HandleSize).Contains(w) {
			return zones[i], true, true
		}
		if b.Contains(w) {
			return zones[i], false, true
		}
	}
	return zone.Zone{}, false, false
}

// HitTest returns the id of the topmost zone under device point p.
func (c *Controller) HitTest(p geom.Point) (string, bool) {
	z, _, ok := c.hit(c.ToWorld(p))
	return z.ID, ok
}

func (c *Controller) grabAt(w geom.Point) {
	z, handle, ok := c.hit(w)
	if !ok {
		c.store.Select("")
		return
	}
	c.store.Select(z.ID)
	c.target = z.ID
	c.startBox = z.Bounds()
	c.startPoints = z.Points
	if handle {
		c.transition(StateResizing)
		return
	}
	c.grab = w.Sub(z.Bounds().Origin())
	c.transition(StateDragging)
}

func (c *Controller) dragTo(w geom.Point) {
	o := w.Sub(c.grab)
	p := zone.Patch{X: zone.Ptr(o.X), Y: zone.Ptr(o.Y)}
	if c.startPoints != nil {
		p.Points = geom.TranslateRing(c.startPoints, o.Sub(c.startBox.Origin()))
	}
	c.store.Update(c.target, p)
}

func (c *Controller) resizeTo(w geom.Point) {
	nb := c.startBox
	nb.Width = math.Max(c.opts.MinSize, w.X-nb.X)
	nb.Height = math.Max(c.opts.MinSize, w.Y-nb.Y)
	p := zone.Patch{Width: zone.Ptr(nb.Width), Height: zone.Ptr(nb.Height)}
	if c.startPoints != nil {
		p.Points = geom.FitRing(c.startPoints, c.startBox, nb)
	}
	c.store.Update(c.target, p)
}
