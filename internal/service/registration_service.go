package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/repository"
)

// RegistrationService manages the registration lifecycle and the role
// capacity invariant. Capacity decisions are delegated to the repository so
// the check and the write share one critical section.
type RegistrationService interface {
	Register(ctx context.Context, actor Actor, req dto.RegistrationCreateRequest) (dto.RegistrationResponse, error)
	Cancel(ctx context.Context, actor Actor, registrationID uint) (dto.RegistrationResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, registrationID uint, req dto.RegistrationStatusUpdateRequest) (dto.RegistrationResponse, error)
	UpdateRoleSlots(ctx context.Context, actor Actor, roleID uint, req dto.RoleSlotsUpdateRequest) (dto.RoleLite, error)
	DeleteRole(ctx context.Context, actor Actor, roleID uint) error
}

type registrationService struct {
	registrations repository.RegistrationRepository
	roles         repository.RoleRepository
	validator     *validator.Validate
	audit         AuditRecorder
	logger        zerolog.Logger
	now           func() time.Time
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(registrations repository.RegistrationRepository, roles repository.RoleRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) RegistrationService {
	return &registrationService{
		registrations: registrations,
		roles:         roles,
		validator:     validator,
		audit:         audit,
		logger:        logger.With().Str("component", "registration_service").Logger(),
		now:           time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, actor Actor, req dto.RegistrationCreateRequest) (dto.RegistrationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RegistrationResponse{}, err
	}

	// Students may only register themselves; advisors and admins may
	// register on a student's behalf.
	if actor.Role == RoleStudent && actor.ID != req.StudentID {
		return dto.RegistrationResponse{}, ErrNotActivityOwner
	}

	if _, err := s.roles.GetByID(ctx, req.RoleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrRoleNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	registration := models.ActivityRegistration{
		StudentID:    req.StudentID,
		RoleID:       req.RoleID,
		Status:       models.RegistrationStatusRegistered,
		RegisteredAt: s.now(),
	}

	if err := s.registrations.CreateWithCapacity(ctx, &registration); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateActive):
			return dto.RegistrationResponse{}, ErrDuplicateRegistration
		case errors.Is(err, repository.ErrCapacityExceeded):
			return dto.RegistrationResponse{}, ErrCapacityExceeded
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.RegistrationResponse{}, ErrRoleNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	s.recordTransition(ctx, actor, registration.ID, "registration.created", map[string]interface{}{
		"student_id": req.StudentID,
		"role_id":    req.RoleID,
	})

	return dto.NewRegistrationResponse(registration), nil
}

func (s *registrationService) Cancel(ctx context.Context, actor Actor, registrationID uint) (dto.RegistrationResponse, error) {
	registration, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrRegistrationNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	if actor.Role == RoleStudent && actor.ID != registration.StudentID {
		return dto.RegistrationResponse{}, ErrNotActivityOwner
	}

	updated, err := s.registrations.UpdateStatus(ctx, registrationID, registration.Version, models.RegistrationStatusCancelled)
	if err != nil {
		return dto.RegistrationResponse{}, s.mapTransitionError(err)
	}

	s.recordTransition(ctx, actor, registrationID, "registration.cancelled", map[string]interface{}{
		"student_id": registration.StudentID,
		"role_id":    registration.RoleID,
	})

	return dto.NewRegistrationResponse(updated), nil
}

// UpdateStatus applies a single authorized attendance decision. The version
// in the request is the one the caller last read; a mismatch surfaces the
// concurrent write instead of overwriting it.
func (s *registrationService) UpdateStatus(ctx context.Context, actor Actor, registrationID uint, req dto.RegistrationStatusUpdateRequest) (dto.RegistrationResponse, error) {
	tracer := otel.Tracer("github.com/uniact/activity-api/internal/service/registration")
	ctx, span := tracer.Start(ctx, "registration.update_status")
	span.SetAttributes(
		attribute.Int64("registration.id", int64(registrationID)),
		attribute.String("registration.status", req.Status),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return dto.RegistrationResponse{}, err
	}

	registration, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrRegistrationNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	if actor.Role != RoleAdmin && registration.Role.Activity.OwnerID != actor.ID {
		return dto.RegistrationResponse{}, ErrNotActivityOwner
	}

	updated, err := s.registrations.UpdateStatus(ctx, registrationID, req.Version, req.Status)
	if err != nil {
		span.RecordError(err)
		return dto.RegistrationResponse{}, s.mapTransitionError(err)
	}

	s.recordTransition(ctx, actor, registrationID, "registration.status_updated", map[string]interface{}{
		"student_id": registration.StudentID,
		"status":     req.Status,
	})

	return dto.NewRegistrationResponse(updated), nil
}

func (s *registrationService) UpdateRoleSlots(ctx context.Context, actor Actor, roleID uint, req dto.RoleSlotsUpdateRequest) (dto.RoleLite, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RoleLite{}, err
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RoleLite{}, ErrRoleNotFound
		}
		return dto.RoleLite{}, err
	}

	if actor.Role != RoleAdmin && role.Activity.OwnerID != actor.ID {
		return dto.RoleLite{}, ErrNotActivityOwner
	}

	updated, err := s.roles.UpdateMaxSlots(ctx, roleID, req.MaxSlots)
	if err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return dto.RoleLite{}, ErrCapacityExceeded
		}
		return dto.RoleLite{}, err
	}

	return dto.RoleLite{
		ID:            updated.ID,
		ActivityID:    updated.ActivityID,
		Name:          updated.Name,
		PointsAwarded: updated.PointsAwarded,
		PointType:     string(updated.PointType),
		MaxSlots:      updated.MaxSlots,
	}, nil
}

// DeleteRole removes a role. Deletion is blocked while active registrations
// reference the role so students are never orphaned silently.
func (s *registrationService) DeleteRole(ctx context.Context, actor Actor, roleID uint) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	if actor.Role != RoleAdmin && role.Activity.OwnerID != actor.ID {
		return ErrNotActivityOwner
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		if errors.Is(err, repository.ErrActiveRegistrations) {
			return ErrRoleInUse
		}
		return err
	}

	return nil
}

func (s *registrationService) mapTransitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrStaleVersion):
		return ErrStaleRegistration
	case errors.Is(err, repository.ErrCapacityExceeded):
		return ErrCapacityExceeded
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRegistrationNotFound
	}
	return err
}

func (s *registrationService) recordTransition(ctx context.Context, actor Actor, registrationID uint, action string, metadata map[string]interface{}) {
	if s.audit == nil {
		return
	}
	entityID := registrationID
	if err := s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "registration",
		EntityID:   &entityID,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record audit entry")
	}
}
