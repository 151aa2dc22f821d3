package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/repository"
)

// ConflictService decides whether a candidate time window collides with a
// student's existing commitments inside one semester. Commitments are the
// student's active activity registrations plus the fixed timetable blocks of
// the student's class. Cross-semester double-booking is permitted.
type ConflictService interface {
	Check(ctx context.Context, req dto.ConflictCheckRequest) (dto.ConflictReportResponse, error)
}

type conflictService struct {
	registrations repository.RegistrationRepository
	students      repository.StudentRepository
	semesters     repository.SemesterRepository
	schedules     repository.ScheduleRepository
	logger        zerolog.Logger
}

// NewConflictService builds the schedule conflict detector.
func NewConflictService(registrations repository.RegistrationRepository, students repository.StudentRepository, semesters repository.SemesterRepository, schedules repository.ScheduleRepository, logger zerolog.Logger) ConflictService {
	return &conflictService{
		registrations: registrations,
		students:      students,
		semesters:     semesters,
		schedules:     schedules,
		logger:        logger.With().Str("component", "conflict_service").Logger(),
	}
}

func (s *conflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) (dto.ConflictReportResponse, error) {
	candidate, err := models.NewWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		return dto.ConflictReportResponse{}, ErrInvalidWindow
	}

	if _, err := s.semesters.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConflictReportResponse{}, ErrSemesterNotFound
		}
		return dto.ConflictReportResponse{}, err
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConflictReportResponse{}, ErrStudentNotFound
		}
		return dto.ConflictReportResponse{}, err
	}

	active, err := s.registrations.ListActiveByStudent(ctx, req.StudentID)
	if err != nil {
		return dto.ConflictReportResponse{}, err
	}

	blocks, err := s.schedules.ListByClassAndSemester(ctx, student.ClassID, req.SemesterID)
	if err != nil {
		return dto.ConflictReportResponse{}, err
	}

	sources := collectCommittedWindows(req.SemesterID, active, blocks)
	conflicts := detectConflicts(candidate, sources)

	return dto.ConflictReportResponse{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

// committedWindow is one already-booked window a candidate is checked against.
type committedWindow struct {
	kind   string
	id     uint
	label  string
	window models.Window
}

// collectCommittedWindows materializes the student's commitments for one
// semester, activities first, then timetable blocks, each in input order.
// Activities without a recorded window commit no time and are skipped.
func collectCommittedWindows(semesterID uint, active []models.ActivityRegistration, blocks []models.ClassScheduleBlock) []committedWindow {
	sources := make([]committedWindow, 0, len(active)+len(blocks))

	for _, registration := range active {
		activity := registration.Role.Activity
		if activity.SemesterID != semesterID {
			continue
		}
		window, ok := activity.Window()
		if !ok {
			continue
		}
		sources = append(sources, committedWindow{
			kind:   dto.ConflictSourceActivity,
			id:     activity.ID,
			label:  activity.Title,
			window: window,
		})
	}

	for _, block := range blocks {
		sources = append(sources, committedWindow{
			kind:   dto.ConflictSourceClassSchedule,
			id:     block.ID,
			label:  block.Label,
			window: block.Window(),
		})
	}

	return sources
}

// detectConflicts collects every overlap instead of short-circuiting so the
// caller can present the complete picture.
func detectConflicts(candidate models.Window, sources []committedWindow) []dto.ConflictEntry {
	conflicts := []dto.ConflictEntry{}
	for _, source := range sources {
		if !candidate.Overlaps(source.window) {
			continue
		}
		conflicts = append(conflicts, dto.ConflictEntry{
			SourceKind: source.kind,
			SourceID:   source.id,
			Label:      source.label,
			StartsAt:   source.window.StartsAt,
			EndsAt:     source.window.EndsAt,
		})
	}
	return conflicts
}
