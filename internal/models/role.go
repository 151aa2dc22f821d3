package models

import "time"

// PointType classifies how a role's points aggregate.
type PointType string

const (
	// PointTypeTraining points only count toward the semester they were earned in.
	PointTypeTraining PointType = "training"
	// PointTypeSocial points accumulate across all semesters.
	PointTypeSocial PointType = "social"
)

// Valid reports whether the point type is a supported value.
func (p PointType) Valid() bool {
	switch p {
	case PointTypeTraining, PointTypeSocial:
		return true
	default:
		return false
	}
}

// ActivityRole describes one way to participate in an activity and the points
// it awards. A nil MaxSlots means unlimited capacity.
type ActivityRole struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ActivityID    uint      `gorm:"index;not null" json:"activity_id"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	PointsAwarded int       `gorm:"not null" json:"points_awarded"`
	PointType     PointType `gorm:"size:16;not null" json:"point_type"`
	MaxSlots      *int      `json:"max_slots"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Activity Activity `json:"activity,omitempty"`
}
