package models

import "time"

// Registration statuses. Cancelled is the soft-delete path; registrations are
// never physically removed.
const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusAttended   = "attended"
	RegistrationStatusAbsent     = "absent"
	RegistrationStatusCancelled  = "cancelled"
)

// ActiveStatus reports whether the status counts against a role's slot
// capacity.
func ActiveStatus(status string) bool {
	return status == RegistrationStatusRegistered || status == RegistrationStatusAttended
}

// ImportableStatus reports whether a bulk import may apply the status.
func ImportableStatus(status string) bool {
	return status == RegistrationStatusAttended || status == RegistrationStatusAbsent
}

// ActivityRegistration links a student to an activity role. Version backs the
// compare-and-swap guard on status transitions.
type ActivityRegistration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"index:idx_registration_student_role;not null" json:"student_id"`
	RoleID       uint      `gorm:"index:idx_registration_student_role;not null" json:"role_id"`
	Status       string    `gorm:"size:16;not null;default:registered" json:"status"`
	Version      int       `gorm:"not null;default:0" json:"version"`
	RegisteredAt time.Time `gorm:"not null" json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Student Student      `json:"student,omitempty"`
	Role    ActivityRole `json:"role,omitempty"`
}

// Active reports whether the registration currently occupies a slot.
func (r ActivityRegistration) Active() bool {
	return ActiveStatus(r.Status)
}
