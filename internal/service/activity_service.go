package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/repository"
)

// ActivityService manages activities and their roles.
type ActivityService interface {
	Get(ctx context.Context, id uint) (dto.ActivityResponse, error)
	List(ctx context.Context, semesterID *uint) ([]dto.ActivityResponse, error)
	Create(ctx context.Context, actor Actor, req dto.ActivityCreateRequest) (dto.ActivityResponse, error)
	AddRole(ctx context.Context, actor Actor, activityID uint, req dto.RoleCreateRequest) (dto.RoleLite, error)
}

type activityService struct {
	activities repository.ActivityRepository
	roles      repository.RoleRepository
	semesters  repository.SemesterRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(activities repository.ActivityRepository, roles repository.RoleRepository, semesters repository.SemesterRepository, validator *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		activities: activities,
		roles:      roles,
		semesters:  semesters,
		validator:  validator,
		logger:     logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Get(ctx context.Context, id uint) (dto.ActivityResponse, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrActivityNotFound
		}
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) List(ctx context.Context, semesterID *uint) ([]dto.ActivityResponse, error) {
	activities, err := s.activities.List(ctx, repository.ActivityFilter{SemesterID: semesterID})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, dto.NewActivityResponse(activity))
	}

	return responses, nil
}

func (s *activityService) Create(ctx context.Context, actor Actor, req dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	// Window bounds must come as a pair and be well-formed.
	if (req.StartsAt == nil) != (req.EndsAt == nil) {
		return dto.ActivityResponse{}, ErrInvalidWindow
	}
	if req.StartsAt != nil {
		if _, err := models.NewWindow(*req.StartsAt, *req.EndsAt); err != nil {
			return dto.ActivityResponse{}, ErrInvalidWindow
		}
	}

	if _, err := s.semesters.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrSemesterNotFound
		}
		return dto.ActivityResponse{}, err
	}

	activity := models.Activity{
		Title:      strings.TrimSpace(req.Title),
		SemesterID: req.SemesterID,
		OwnerID:    actor.ID,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	}

	if err := s.activities.Create(ctx, &activity); err != nil {
		s.logger.Error().Err(err).Msg("failed to create activity")
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *activityService) AddRole(ctx context.Context, actor Actor, activityID uint, req dto.RoleCreateRequest) (dto.RoleLite, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RoleLite{}, err
	}

	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RoleLite{}, ErrActivityNotFound
		}
		return dto.RoleLite{}, err
	}

	if actor.Role != RoleAdmin && activity.OwnerID != actor.ID {
		return dto.RoleLite{}, ErrNotActivityOwner
	}

	role := models.ActivityRole{
		ActivityID:    activityID,
		Name:          strings.TrimSpace(req.Name),
		PointsAwarded: req.PointsAwarded,
		PointType:     models.PointType(req.PointType),
		MaxSlots:      req.MaxSlots,
	}

	if err := s.roles.Create(ctx, &role); err != nil {
		s.logger.Error().Err(err).Uint("activity_id", activityID).Msg("failed to create role")
		return dto.RoleLite{}, err
	}

	return dto.RoleLite{
		ID:            role.ID,
		ActivityID:    role.ActivityID,
		Name:          role.Name,
		PointsAwarded: role.PointsAwarded,
		PointType:     string(role.PointType),
		MaxSlots:      role.MaxSlots,
	}, nil
}
