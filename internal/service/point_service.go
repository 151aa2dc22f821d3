package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/repository"
)

// PointService computes running point totals from attended registrations.
// Training points are scoped to a semester window; social points accumulate
// across all time. The asymmetry is a fixed domain rule.
type PointService interface {
	ComputeStudent(ctx context.Context, studentID uint, semesterID *uint) (dto.PointSummaryResponse, error)
	ComputeClass(ctx context.Context, classID uint, semesterID *uint) (dto.ClassPointSummaryResponse, error)
}

type pointService struct {
	registrations repository.RegistrationRepository
	students      repository.StudentRepository
	semesters     repository.SemesterRepository
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        zerolog.Logger
}

// NewPointService builds the point aggregation service. The cache client may
// be nil; summaries are then recomputed on every call.
func NewPointService(registrations repository.RegistrationRepository, students repository.StudentRepository, semesters repository.SemesterRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) PointService {
	return &pointService{
		registrations: registrations,
		students:      students,
		semesters:     semesters,
		cache:         cache,
		cacheTTL:      ttl,
		logger:        logger.With().Str("component", "point_service").Logger(),
	}
}

func (s *pointService) ComputeStudent(ctx context.Context, studentID uint, semesterID *uint) (dto.PointSummaryResponse, error) {
	semester, err := s.resolveSemester(ctx, semesterID)
	if err != nil {
		return dto.PointSummaryResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PointSummaryResponse{}, ErrStudentNotFound
		}
		return dto.PointSummaryResponse{}, err
	}

	cacheKey := pointCacheKey(studentID, semesterID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var summary dto.PointSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("point summary cache hit")
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read point summary cache")
		}
	}

	attended, err := s.registrations.ListAttendedByStudent(ctx, studentID)
	if err != nil {
		return dto.PointSummaryResponse{}, err
	}

	summary := buildPointSummary(studentID, semester, attended)

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store point summary cache")
			}
		}
	}

	return summary, nil
}

// ComputeClass aggregates each student independently. One student's failure
// is reported inline and never aborts the rest of the class.
func (s *pointService) ComputeClass(ctx context.Context, classID uint, semesterID *uint) (dto.ClassPointSummaryResponse, error) {
	semester, err := s.resolveSemester(ctx, semesterID)
	if err != nil {
		return dto.ClassPointSummaryResponse{}, err
	}

	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return dto.ClassPointSummaryResponse{}, err
	}

	response := dto.ClassPointSummaryResponse{
		ClassID:    classID,
		SemesterID: semesterID,
		Students:   make([]dto.ClassPointEntry, 0, len(students)),
	}

	for _, student := range students {
		entry := dto.ClassPointEntry{StudentID: student.ID, StudentCode: student.Code}

		attended, err := s.registrations.ListAttendedByStudent(ctx, student.ID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("skipping student in class aggregation")
			entry.Error = "failed to load registrations"
			response.Students = append(response.Students, entry)
			continue
		}

		summary := buildPointSummary(student.ID, semester, attended)
		entry.Summary = &summary
		response.Students = append(response.Students, entry)
	}

	return response, nil
}

func (s *pointService) resolveSemester(ctx context.Context, semesterID *uint) (*models.Semester, error) {
	if semesterID == nil {
		return nil, nil
	}

	semester, err := s.semesters.GetByID(ctx, *semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}

	return &semester, nil
}

// buildPointSummary partitions attended registrations by point type and sums
// each partition. It is a pure function of its snapshot, so re-aggregation
// over the same input always yields the same summary.
func buildPointSummary(studentID uint, semester *models.Semester, attended []models.ActivityRegistration) dto.PointSummaryResponse {
	summary := dto.PointSummaryResponse{
		StudentID:         studentID,
		TrainingBreakdown: []dto.PointBreakdownRow{},
		SocialBreakdown:   []dto.PointBreakdownRow{},
	}
	if semester != nil {
		summary.SemesterID = &semester.ID
	}

	for _, registration := range attended {
		row := dto.PointBreakdownRow{
			RegistrationID: registration.ID,
			ActivityID:     registration.Role.ActivityID,
			ActivityTitle:  registration.Role.Activity.Title,
			RoleID:         registration.RoleID,
			RoleName:       registration.Role.Name,
			Points:         registration.Role.PointsAwarded,
			RegisteredAt:   registration.RegisteredAt,
		}

		switch registration.Role.PointType {
		case models.PointTypeTraining:
			if semester != nil {
				// Membership is decided by the activity's start. An activity
				// without a recorded start is indeterminate and excluded
				// rather than counted as zero.
				start := registration.Role.Activity.StartsAt
				if start == nil || !semester.Contains(*start) {
					continue
				}
			}
			summary.TotalTrainingPoints += registration.Role.PointsAwarded
			summary.TrainingBreakdown = append(summary.TrainingBreakdown, row)
		case models.PointTypeSocial:
			// Social points are all-time; the semester filter never applies.
			summary.TotalSocialPoints += registration.Role.PointsAwarded
			summary.SocialBreakdown = append(summary.SocialBreakdown, row)
		}
	}

	return summary
}

func pointCacheKey(studentID uint, semesterID *uint) string {
	if semesterID != nil {
		return fmt.Sprintf("points:student:%d:semester:%d", studentID, *semesterID)
	}
	return fmt.Sprintf("points:student:%d", studentID)
}
