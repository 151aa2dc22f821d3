package models

import "time"

// ClassScheduleBlock is a fixed timetable block for a class, mirrored from the
// academic timetable system. Blocks count as committed windows during
// conflict checks.
type ClassScheduleBlock struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClassID    uint      `gorm:"index;not null" json:"class_id"`
	SemesterID uint      `gorm:"index;not null" json:"semester_id"`
	Label      string    `gorm:"size:128" json:"label"`
	StartsAt   time.Time `gorm:"not null" json:"starts_at"`
	EndsAt     time.Time `gorm:"not null" json:"ends_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Window returns the block as a time window.
func (b ClassScheduleBlock) Window() Window {
	return Window{StartsAt: b.StartsAt, EndsAt: b.EndsAt}
}
