package dto

import (
	"time"

	"github.com/uniact/activity-api/internal/models"
)

// ActivityCreateRequest describes a new activity. StartsAt and EndsAt may be
// omitted together while the schedule is still being planned.
type ActivityCreateRequest struct {
	Title      string     `json:"title" validate:"required,min=3,max=255"`
	SemesterID uint       `json:"semester_id" validate:"required,gt=0"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
}

// RoleCreateRequest adds a participation role to an activity.
type RoleCreateRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=128"`
	PointsAwarded int    `json:"points_awarded" validate:"gte=0"`
	PointType     string `json:"point_type" validate:"required,oneof=training social"`
	MaxSlots      *int   `json:"max_slots" validate:"omitempty,gt=0"`
}

// ActivityResponse is returned to API clients when viewing activities.
type ActivityResponse struct {
	ID         uint       `json:"id"`
	Title      string     `json:"title"`
	SemesterID uint       `json:"semester_id"`
	OwnerID    uint       `json:"owner_id"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	Roles      []RoleLite `json:"roles"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewActivityResponse maps an activity model to its response shape.
func NewActivityResponse(activity models.Activity) ActivityResponse {
	roles := make([]RoleLite, 0, len(activity.Roles))
	for _, role := range activity.Roles {
		roles = append(roles, RoleLite{
			ID:            role.ID,
			ActivityID:    role.ActivityID,
			Name:          role.Name,
			PointsAwarded: role.PointsAwarded,
			PointType:     string(role.PointType),
			MaxSlots:      role.MaxSlots,
		})
	}

	return ActivityResponse{
		ID:         activity.ID,
		Title:      activity.Title,
		SemesterID: activity.SemesterID,
		OwnerID:    activity.OwnerID,
		StartsAt:   activity.StartsAt,
		EndsAt:     activity.EndsAt,
		Roles:      roles,
		CreatedAt:  activity.CreatedAt,
		UpdatedAt:  activity.UpdatedAt,
	}
}
