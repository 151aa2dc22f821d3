package models

import "time"

// Activity is an event students participate in through one of its roles.
// StartsAt and EndsAt may be unset while an activity is still being planned;
// such activities carry no window and are excluded from training totals.
type Activity struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	SemesterID uint       `gorm:"index;not null" json:"semester_id"`
	OwnerID    uint       `gorm:"index;not null" json:"owner_id"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Roles []ActivityRole `json:"roles,omitempty"`
}

// Window returns the activity's time window when both bounds are recorded.
func (a Activity) Window() (Window, bool) {
	if a.StartsAt == nil || a.EndsAt == nil {
		return Window{}, false
	}

	return Window{StartsAt: *a.StartsAt, EndsAt: *a.EndsAt}, true
}
