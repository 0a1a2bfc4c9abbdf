package mapsync

import (
	"sync"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// SelectionListener observes a selection transition.
type SelectionListener func(prev, next domain.SelectionState)

// Selection holds the hovered list row and the selected marker of one map
// session. Writes replace the previous value; readers get copies.
type Selection struct {
	mu        sync.RWMutex
	state     domain.SelectionState
	listeners []SelectionListener
}

// NewSelection creates an empty Selection.
func NewSelection() *Selection {
	return &Selection{}
}

// OnChange registers a listener called after every write, outside the lock.
func (s *Selection) OnChange(l SelectionListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// SetHovered replaces the hovered id; "" clears it.
func (s *Selection) SetHovered(id string) {
	s.update(func(st *domain.SelectionState) { st.HoveredID = id })
}

// SetSelected replaces the selected feature; nil clears it.
func (s *Selection) SetSelected(f *domain.Feature) {
	var sel *domain.Feature
	if f != nil {
		cp := *f
		sel = &cp
	}
	s.update(func(st *domain.SelectionState) { st.Selected = sel })
}

// ClearSelected is SetSelected(nil).
func (s *Selection) ClearSelected() {
	s.SetSelected(nil)
}

// Snapshot returns a copy of the current state.
func (s *Selection) Snapshot() domain.SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

func (s *Selection) update(mutate func(*domain.SelectionState)) {
	s.mu.Lock()
	prev := copyState(s.state)
	mutate(&s.state)
	next := copyState(s.state)
	listeners := append([]SelectionListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
}

func copyState(st domain.SelectionState) domain.SelectionState {
	out := domain.SelectionState{HoveredID: st.HoveredID}
	if st.Selected != nil {
		f := *st.Selected
		out.Selected = &f
	}
	return out
}

func selectedID(st domain.SelectionState) string {
	if st.Selected == nil {
		return ""
	}
	return st.Selected.ID
}
