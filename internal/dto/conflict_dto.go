package dto

import "time"

// Conflict source kinds.
const (
	ConflictSourceActivity      = "activity"
	ConflictSourceClassSchedule = "class_schedule"
)

// ConflictCheckRequest asks whether a candidate window collides with a
// student's commitments in one semester.
type ConflictCheckRequest struct {
	StudentID  uint      `json:"student_id" validate:"required,gt=0"`
	SemesterID uint      `json:"semester_id" validate:"required,gt=0"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required"`
}

// ConflictEntry describes one committed window the candidate overlaps.
type ConflictEntry struct {
	SourceKind string    `json:"source_kind"`
	SourceID   uint      `json:"source_id"`
	Label      string    `json:"label,omitempty"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// ConflictReportResponse lists every collision found, in input order. An
// empty list is the expected no-conflict outcome.
type ConflictReportResponse struct {
	HasConflict bool            `json:"has_conflict"`
	Conflicts   []ConflictEntry `json:"conflicts"`
}
