package resolve

import (
	"sync"

	"coachly/fitness-coach/internal/domain"
)

// DayView tracks which plan day a user is looking at and the resolution that
// belongs to it. Resolutions are requested asynchronously: a result for a
// previously viewed day that arrives after the user has navigated away must
// not overwrite the current day's state, so Apply is guarded by day identity
// rather than completion order.
type DayView struct {
	mu          sync.Mutex
	selectedDay int
	resolvedDay int
	resolution  Resolution
}

// NewDayView starts a view positioned at the given day.
func NewDayView(day int) *DayView {
	return &DayView{selectedDay: day}
}

// SelectDay moves the view to a new day. A pending resolution for the old day
// becomes stale and will be dropped by Apply.
func (v *DayView) SelectDay(day int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedDay = day
}

// SelectedDay returns the day currently in view.
func (v *DayView) SelectedDay() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selectedDay
}

// Apply installs a resolution requested for the given day. It reports whether
// the result was applied: false means the user has moved to a different day
// since the request was issued and the result was discarded.
func (v *DayView) Apply(day int, res Resolution) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if day != v.selectedDay {
		return false
	}
	v.resolvedDay = day
	v.resolution = res
	return true
}

// MergeExercise folds a single enriched exercise into the applied resolution
// so subsequent reads of the same day reuse it without a repeat request. The
// same day-identity guard as Apply applies.
func (v *DayView) MergeExercise(day int, ex domain.LibraryExercise) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if day != v.selectedDay || v.resolution.ByName == nil || v.resolvedDay != day {
		return false
	}
	v.resolution.merge(ex)
	return true
}

// Current returns the applied resolution and whether it matches the selected
// day. ok is false while a fresh selection has not been resolved yet.
func (v *DayView) Current() (Resolution, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.resolution.ByName == nil || v.resolvedDay != v.selectedDay {
		return Resolution{}, false
	}
	return v.resolution, true
}

// Views is a registry of per-user day views.
type Views struct {
	mu sync.Mutex
	m  map[string]*DayView
}

// NewViews creates an empty registry.
func NewViews() *Views {
	return &Views{m: make(map[string]*DayView)}
}

// For returns the view of one user, creating it at day 1 on first use.
func (s *Views) For(userID string) *DayView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.m[userID]
	if !ok {
		view = NewDayView(1)
		s.m[userID] = view
	}
	return view
}
