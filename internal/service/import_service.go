package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/observability"
	"github.com/uniact/activity-api/internal/repository"
)

// Row-level failure reasons reported in the import outcome.
const (
	importReasonUnknownIdentifier = "unknown identifier"
	importReasonInvalidOutcome    = "invalid outcome"
	importReasonConcurrentUpdate  = "conflicting concurrent update"
	importReasonCapacityExceeded  = "role slot capacity exceeded"
)

// ImportService reconciles a bulk sheet of attendance outcomes against an
// activity's registrations. Rows apply in order and independently: one row's
// failure never rolls back another row's success.
type ImportService interface {
	Reconcile(ctx context.Context, actor Actor, activityID uint, req dto.AttendanceImportRequest) (dto.ImportOutcomeResponse, error)
}

type importService struct {
	registrations repository.RegistrationRepository
	activities    repository.ActivityRepository
	validator     *validator.Validate
	audit         AuditRecorder
	logger        zerolog.Logger
}

// NewImportService constructs the attendance import service.
func NewImportService(registrations repository.RegistrationRepository, activities repository.ActivityRepository, validator *validator.Validate, audit AuditRecorder, logger zerolog.Logger) ImportService {
	return &importService{
		registrations: registrations,
		activities:    activities,
		validator:     validator,
		audit:         audit,
		logger:        logger.With().Str("component", "import_service").Logger(),
	}
}

func (s *importService) Reconcile(ctx context.Context, actor Actor, activityID uint, req dto.AttendanceImportRequest) (dto.ImportOutcomeResponse, error) {
	tracer := otel.Tracer("github.com/uniact/activity-api/internal/service/import")
	ctx, span := tracer.Start(ctx, "attendance.reconcile")
	span.SetAttributes(
		attribute.Int64("import.activity_id", int64(activityID)),
		attribute.Int64("import.actor_id", int64(actor.ID)),
		attribute.Int("import.rows", len(req.Rows)),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ImportOutcomeResponse{}, err
	}

	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "activity_not_found")
			return dto.ImportOutcomeResponse{}, ErrActivityNotFound
		}
		span.RecordError(err)
		return dto.ImportOutcomeResponse{}, err
	}

	if actor.Role != RoleAdmin && activity.OwnerID != actor.ID {
		span.SetStatus(codes.Error, "not_owner")
		return dto.ImportOutcomeResponse{}, ErrNotActivityOwner
	}

	outcome := dto.ImportOutcomeResponse{Errors: []dto.ImportRowError{}}

	for index, row := range req.Rows {
		rowNumber := index + 1
		s.applyRow(ctx, activityID, rowNumber, row, &outcome)
	}

	if s.audit != nil {
		metadata := map[string]interface{}{
			"activity_id": activity.ID,
			"rows":        len(req.Rows),
			"updated":     outcome.Updated,
			"skipped":     outcome.Skipped,
			"errored":     len(outcome.Errors),
		}
		entityID := activity.ID
		if err := s.audit.Record(ctx, AuditEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "attendance.imported",
			EntityType: "activity",
			EntityID:   &entityID,
			Metadata:   metadata,
		}); err != nil {
			s.logger.Warn().Err(err).Uint("activity_id", activity.ID).Msg("failed to record import audit entry")
		}
	}

	span.SetAttributes(
		attribute.Int("import.updated", outcome.Updated),
		attribute.Int("import.skipped", outcome.Skipped),
		attribute.Int("import.errored", len(outcome.Errors)),
	)

	observability.ImportRows().WithLabelValues("updated").Add(float64(outcome.Updated))
	observability.ImportRows().WithLabelValues("skipped").Add(float64(outcome.Skipped))
	observability.ImportRows().WithLabelValues("errored").Add(float64(len(outcome.Errors)))

	return outcome, nil
}

// applyRow runs the per-row state machine: resolve the identifier, skip
// cancelled registrations, reject unsupported outcomes, then transition. Each
// row re-reads the registration so a later duplicate of the same identifier
// sees the version the earlier row wrote (last occurrence wins).
func (s *importService) applyRow(ctx context.Context, activityID uint, rowNumber int, row dto.AttendanceRow, outcome *dto.ImportOutcomeResponse) {
	code := strings.TrimSpace(row.StudentCode)

	registration, err := s.registrations.FindByActivityAndCode(ctx, activityID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.Errors = append(outcome.Errors, dto.ImportRowError{Row: rowNumber, Reason: importReasonUnknownIdentifier})
			return
		}
		s.logger.Error().Err(err).Int("row", rowNumber).Msg("registration lookup failed")
		outcome.Errors = append(outcome.Errors, dto.ImportRowError{Row: rowNumber, Reason: importReasonUnknownIdentifier})
		return
	}

	// Cancelled registrations are immutable to import; not an error.
	if registration.Status == models.RegistrationStatusCancelled {
		outcome.Skipped++
		return
	}

	status := strings.ToLower(strings.TrimSpace(row.Outcome))
	if !models.ImportableStatus(status) {
		outcome.Errors = append(outcome.Errors, dto.ImportRowError{Row: rowNumber, Reason: importReasonInvalidOutcome})
		return
	}

	if _, err := s.registrations.UpdateStatus(ctx, registration.ID, registration.Version, status); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleVersion):
			outcome.Errors = append(outcome.Errors, dto.ImportRowError{Row: rowNumber, Reason: importReasonConcurrentUpdate})
		case errors.Is(err, repository.ErrCapacityExceeded):
			outcome.Errors = append(outcome.Errors, dto.ImportRowError{Row: rowNumber, Reason: importReasonCapacityExceeded})
		default:
			s.logger.Error().Err(err).Int("row", rowNumber).Uint("registration_id", registration.ID).Msg("status transition failed")
			outcome.Errors = append(outcome.Errors, dto.ImportRowError{Row: rowNumber, Reason: "registration update failed"})
		}
		return
	}

	outcome.Updated++
}
