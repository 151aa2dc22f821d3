package service

import (
	"errors"
	"fmt"
)

// Base error kinds. Specific sentinels wrap one of these so handlers can
// branch on the kind with errors.Is without enumerating every sentinel.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrSemesterNotFound     = fmt.Errorf("semester %w", ErrNotFound)
	ErrStudentNotFound      = fmt.Errorf("student %w", ErrNotFound)
	ErrActivityNotFound     = fmt.Errorf("activity %w", ErrNotFound)
	ErrRoleNotFound         = fmt.Errorf("activity role %w", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("registration %w", ErrNotFound)

	// ErrCapacityExceeded covers both a registration that would cross a
	// role's slot limit and a max_slots reduction below the active count.
	ErrCapacityExceeded = fmt.Errorf("role slot capacity: %w", ErrConflict)

	// ErrDuplicateRegistration signals a second active registration for the
	// same (student, role) pair.
	ErrDuplicateRegistration = fmt.Errorf("duplicate active registration: %w", ErrConflict)

	// ErrStaleRegistration signals a lost concurrent-write race; the caller
	// must re-read and decide, the service never retries silently.
	ErrStaleRegistration = fmt.Errorf("registration changed concurrently: %w", ErrConflict)

	// ErrRoleInUse blocks role deletion while active registrations exist.
	ErrRoleInUse = fmt.Errorf("role has active registrations: %w", ErrConflict)

	// ErrNotActivityOwner is returned when the actor does not own the
	// activity being mutated and is not an admin.
	ErrNotActivityOwner = errors.New("actor does not own this activity")

	// ErrInvalidWindow rejects a malformed time window before any mutation.
	ErrInvalidWindow = fmt.Errorf("window start must precede end: %w", ErrValidation)
)
