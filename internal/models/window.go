package models

import (
	"errors"
	"time"
)

// ErrInvalidWindow is returned when a window's start does not precede its end.
var ErrInvalidWindow = errors.New("window start must be before end")

// Window is a half-open time interval [StartsAt, EndsAt) shared by activities
// and class-schedule blocks.
type Window struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// NewWindow validates the bounds before constructing a window.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, ErrInvalidWindow
	}

	return Window{StartsAt: start, EndsAt: end}, nil
}

// Overlaps reports whether two windows intersect. Touching endpoints do not
// count as an overlap.
func (w Window) Overlaps(other Window) bool {
	return w.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(w.EndsAt)
}
