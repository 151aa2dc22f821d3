package dto

import "time"

// PointBreakdownRow is one attended registration's contribution to a total.
// Rows preserve attendance order for display.
type PointBreakdownRow struct {
	RegistrationID uint      `json:"registration_id"`
	ActivityID     uint      `json:"activity_id"`
	ActivityTitle  string    `json:"activity_title"`
	RoleID         uint      `json:"role_id"`
	RoleName       string    `json:"role_name"`
	Points         int       `json:"points"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// PointSummaryResponse aggregates a student's points. Training totals honour
// the semester filter; social totals are always all-time.
type PointSummaryResponse struct {
	StudentID           uint                `json:"student_id"`
	SemesterID          *uint               `json:"semester_id,omitempty"`
	TotalTrainingPoints int                 `json:"total_training_points"`
	TotalSocialPoints   int                 `json:"total_social_points"`
	TrainingBreakdown   []PointBreakdownRow `json:"training_breakdown"`
	SocialBreakdown     []PointBreakdownRow `json:"social_breakdown"`
}

// ClassPointEntry carries one student's summary within a class aggregation.
// Error is set when that student's computation failed; the rest of the class
// still proceeds.
type ClassPointEntry struct {
	StudentID   uint                  `json:"student_id"`
	StudentCode string                `json:"student_code"`
	Summary     *PointSummaryResponse `json:"summary,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// ClassPointSummaryResponse aggregates point summaries for a whole class.
type ClassPointSummaryResponse struct {
	ClassID    uint              `json:"class_id"`
	SemesterID *uint             `json:"semester_id,omitempty"`
	Students   []ClassPointEntry `json:"students"`
}
