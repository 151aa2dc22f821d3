package repository

import "errors"

// Sentinel errors raised inside repository transactions. The service layer
// maps these onto its conflict taxonomy, so they must stay comparable with
// errors.Is across the boundary.
var (
	// ErrCapacityExceeded signals a write that would push a role past its
	// slot capacity, or a max_slots reduction below the active count.
	ErrCapacityExceeded = errors.New("role slot capacity exceeded")

	// ErrDuplicateActive signals a second active registration for the same
	// (student, role) pair.
	ErrDuplicateActive = errors.New("active registration already exists")

	// ErrStaleVersion signals a lost compare-and-swap race on a
	// registration's version column.
	ErrStaleVersion = errors.New("registration modified concurrently")

	// ErrActiveRegistrations guards role deletion while active
	// registrations still reference the role.
	ErrActiveRegistrations = errors.New("role still has active registrations")
)
