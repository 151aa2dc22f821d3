package dto

// AttendanceRow is one (identifier, outcome) pair from an uploaded sheet.
// Parsing the sheet itself happens upstream; the API receives ordered rows.
type AttendanceRow struct {
	StudentCode string `json:"student_code" validate:"required"`
	Outcome     string `json:"outcome" validate:"required"`
}

// AttendanceImportRequest carries the ordered batch for one activity.
type AttendanceImportRequest struct {
	Rows []AttendanceRow `json:"rows" validate:"required,min=1,dive"`
}

// ImportRowError records why a single row failed. Row numbers are 1-based in
// batch order so the caller can render an exact audit.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportOutcomeResponse tallies a reconciliation batch.
type ImportOutcomeResponse struct {
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}
