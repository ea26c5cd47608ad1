package zone

import (
	"sync"

	"github.com/google/uuid"

	"zonedit/internal/geom"
)

// Event identifies what a store mutation changed.
type Event int

const (
	EventZonesChanged Event = iota
	EventSelectionChanged
)

func (e Event) String() string {
	switch e {
	case EventZonesChanged:
		return "zones"
	case EventSelectionChanged:
		return "selection"
	default:
		return "unknown"
	}
}

// Listener is called after a mutation, outside the store lock.
type Listener func(Event)

// Store owns the ordered zone collection and the current selection.
// Order is z-order: later zones render on top and win hit-tests.
// The selection, when set, always names an existing zone.
type Store struct {
	mu           sync.RWMutex
	zones        []Zone
	selected     string
	defaultColor string
	newID        func() string
	listeners    []Listener
}

// NewStore returns an empty store. An empty defaultColor uses DefaultColor.
func NewStore(defaultColor string) *Store {
	if defaultColor == "" {
		defaultColor = DefaultColor
	}
	return &Store{defaultColor: defaultColor, newID: uuid.NewString}
}

// OnChange registers a listener for every subsequent mutation.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) emit(events ...Event) {
	s.mu.RLock()
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.RUnlock()
	for _, e := range events {
		for _, l := range ls {
			l(e)
		}
	}
}

// DefaultColor is the color given to zones created without one.
func (s *Store) DefaultColor() string { return s.defaultColor }

// NewID returns a fresh zone id.
func (s *Store) NewID() string { return s.newID() }

// Create appends a new zone with a fresh id and a default name derived from
// the current zone count, and returns a copy of it.
func (s *Store) Create(x, y, width, height float64, typ Type, extra Extra) Zone {
	s.mu.Lock()
	z := Zone{
		ID:      s.newID(),
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		Type:    typ,
		Name:    extra.Name,
		Color:   extra.Color,
		Content: extra.Content,
	}
	if z.Name == "" {
		z.Name = DefaultName(len(s.zones) + 1)
	}
	if z.Color == "" {
		z.Color = s.defaultColor
	}
	if extra.Points != nil {
		z.Points = make([]geom.Point, len(extra.Points))
		copy(z.Points, extra.Points)
	}
	s.zones = append(s.zones, z)
	s.mu.Unlock()
	s.emit(EventZonesChanged)
	return z.clone()
}

func (s *Store) indexOf(id string) int {
	for i := range s.zones {
		if s.zones[i].ID == id {
			return i
		}
	}
	return -1
}

// Update merges p into the zone with the given id. Unknown ids are ignored.
func (s *Store) Update(id string, p Patch) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	p.apply(&s.zones[i])
	s.mu.Unlock()
	s.emit(EventZonesChanged)
}

// Delete removes the zone with the given id, clearing the selection in the
// same step when it pointed at that zone. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.zones = append(s.zones[:i], s.zones[i+1:]...)
	cleared := s.selected == id
	if cleared {
		s.selected = ""
	}
	s.mu.Unlock()
	if cleared {
		s.emit(EventZonesChanged, EventSelectionChanged)
		return
	}
	s.emit(EventZonesChanged)
}

// ReplaceAll swaps in a new collection. The selection survives only if its
// id is still present.
func (s *Store) ReplaceAll(zones []Zone) {
	next := make([]Zone, len(zones))
	for i, z := range zones {
		next[i] = z.clone()
	}
	s.mu.Lock()
	s.zones = next
	cleared := s.selected != "" && s.indexOf(s.selected) < 0
	if cleared {
		s.selected = ""
	}
	s.mu.Unlock()
	if cleared {
		s.emit(EventZonesChanged, EventSelectionChanged)
		return
	}
	s.emit(EventZonesChanged)
}

// Clear removes every zone and the selection.
func (s *Store) Clear() { s.ReplaceAll(nil) }

// List returns a snapshot of the zones in insertion order.
func (s *Store) List() []Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Zone, len(s.zones))
	for i, z := range s.zones {
		out[i] = z.clone()
	}
	return out
}

// Get returns a copy of the zone with the given id.
func (s *Store) Get(id string) (Zone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.zones[i].clone(), true
	}
	return Zone{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}

// Select sets the selection. An empty or unknown id clears it.
func (s *Store) Select(id string) {
	s.mu.Lock()
	if id != "" && s.indexOf(id) < 0 {
		id = ""
	}
	changed := s.selected != id
	s.selected = id
	s.mu.Unlock()
	if changed {
		s.emit(EventSelectionChanged)
	}
}

// Selected returns the selected id, or "" when nothing is selected.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}
