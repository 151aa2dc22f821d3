package dto

import (
	"time"

	"github.com/uniact/activity-api/internal/models"
)

// RegistrationCreateRequest signs a student up for an activity role.
type RegistrationCreateRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
	RoleID    uint `json:"role_id" validate:"required,gt=0"`
}

// RegistrationStatusUpdateRequest applies a single authorized status change.
// Version carries the value the caller last read so concurrent writes are
// detected instead of clobbered.
type RegistrationStatusUpdateRequest struct {
	Status  string `json:"status" validate:"required,oneof=attended absent"`
	Version int    `json:"version" validate:"gte=0"`
}

// RegistrationResponse is returned to API clients when viewing registrations.
type RegistrationResponse struct {
	ID           uint      `json:"id"`
	StudentID    uint      `json:"student_id"`
	RoleID       uint      `json:"role_id"`
	Status       string    `json:"status"`
	Version      int       `json:"version"`
	RegisteredAt time.Time `json:"registered_at"`
	Role         *RoleLite `json:"role,omitempty"`
}

// RoleLite summarizes a role inside registration responses.
type RoleLite struct {
	ID            uint   `json:"id"`
	ActivityID    uint   `json:"activity_id"`
	Name          string `json:"name"`
	PointsAwarded int    `json:"points_awarded"`
	PointType     string `json:"point_type"`
	MaxSlots      *int   `json:"max_slots"`
}

// NewRegistrationResponse maps a registration model to its response shape.
func NewRegistrationResponse(registration models.ActivityRegistration) RegistrationResponse {
	response := RegistrationResponse{
		ID:           registration.ID,
		StudentID:    registration.StudentID,
		RoleID:       registration.RoleID,
		Status:       registration.Status,
		Version:      registration.Version,
		RegisteredAt: registration.RegisteredAt,
	}

	if registration.Role.ID != 0 {
		response.Role = &RoleLite{
			ID:            registration.Role.ID,
			ActivityID:    registration.Role.ActivityID,
			Name:          registration.Role.Name,
			PointsAwarded: registration.Role.PointsAwarded,
			PointType:     string(registration.Role.PointType),
			MaxSlots:      registration.Role.MaxSlots,
		}
	}

	return response
}

// RoleSlotsUpdateRequest changes a role's slot capacity. A nil MaxSlots lifts
// the limit.
type RoleSlotsUpdateRequest struct {
	MaxSlots *int `json:"max_slots" validate:"omitempty,gt=0"`
}
