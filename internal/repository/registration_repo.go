package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uniact/activity-api/internal/models"
)

var activeStatuses = []string{models.RegistrationStatusRegistered, models.RegistrationStatusAttended}

// lockForUpdate applies a row lock on dialects that support it. SQLite, used
// by the repository tests, serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// RegistrationFilter narrows registration listings.
type RegistrationFilter struct {
	StudentID  *uint
	RoleID     *uint
	ActivityID *uint
	Statuses   []string
}

// RegistrationRepository provides access to activity registrations. Writes
// that can cross a role's slot threshold run their capacity check inside the
// same transaction as the write itself.
type RegistrationRepository interface {
	GetByID(ctx context.Context, id uint) (models.ActivityRegistration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]models.ActivityRegistration, error)
	ListAttendedByStudent(ctx context.Context, studentID uint) ([]models.ActivityRegistration, error)
	ListActiveByStudent(ctx context.Context, studentID uint) ([]models.ActivityRegistration, error)
	FindByActivityAndCode(ctx context.Context, activityID uint, studentCode string) (models.ActivityRegistration, error)
	CreateWithCapacity(ctx context.Context, registration *models.ActivityRegistration) error
	UpdateStatus(ctx context.Context, id uint, expectedVersion int, status string) (models.ActivityRegistration, error)
	CountActiveByRole(ctx context.Context, roleID uint) (int64, error)
}

type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository constructs a registration repository.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) GetByID(ctx context.Context, id uint) (models.ActivityRegistration, error) {
	var registration models.ActivityRegistration
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Role.Activity").
		First(&registration, id).Error
	return registration, err
}

func (r *registrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]models.ActivityRegistration, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityRegistration{}).
		Preload("Student").
		Preload("Role")

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}
	if filter.ActivityID != nil {
		query = query.Where("role_id IN (?)", r.db.Model(&models.ActivityRole{}).
			Select("id").Where("activity_id = ?", *filter.ActivityID))
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var registrations []models.ActivityRegistration
	err := query.Order("registered_at ASC, id ASC").Find(&registrations).Error
	return registrations, err
}

// ListAttendedByStudent returns the student's attended registrations with role
// and activity materialized, in attendance order. This is the snapshot the
// point ledger runs over.
func (r *registrationRepository) ListAttendedByStudent(ctx context.Context, studentID uint) ([]models.ActivityRegistration, error) {
	var registrations []models.ActivityRegistration
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Role.Activity").
		Where("student_id = ? AND status = ?", studentID, models.RegistrationStatusAttended).
		Order("registered_at ASC, id ASC").
		Find(&registrations).Error
	return registrations, err
}

// ListActiveByStudent returns registrations that still commit the student's
// time, with activity windows materialized for conflict checking.
func (r *registrationRepository) ListActiveByStudent(ctx context.Context, studentID uint) ([]models.ActivityRegistration, error) {
	var registrations []models.ActivityRegistration
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Role.Activity").
		Where("student_id = ? AND status IN ?", studentID, activeStatuses).
		Order("registered_at ASC, id ASC").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepository) FindByActivityAndCode(ctx context.Context, activityID uint, studentCode string) (models.ActivityRegistration, error) {
	var registration models.ActivityRegistration
	err := r.db.WithContext(ctx).
		Joins("JOIN students ON students.id = activity_registrations.student_id").
		Joins("JOIN activity_roles ON activity_roles.id = activity_registrations.role_id").
		Where("students.code = ? AND activity_roles.activity_id = ?", studentCode, activityID).
		Order("activity_registrations.id DESC").
		First(&registration).Error
	return registration, err
}

// CreateWithCapacity inserts a registration after verifying, under a row lock
// on the role, that the (student, role) pair has no active registration and
// that the role still has a free slot.
func (r *registrationRepository) CreateWithCapacity(ctx context.Context, registration *models.ActivityRegistration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.ActivityRole
		if err := lockForUpdate(tx).First(&role, registration.RoleID).Error; err != nil {
			return err
		}

		var duplicates int64
		if err := tx.Model(&models.ActivityRegistration{}).
			Where("student_id = ? AND role_id = ? AND status IN ?", registration.StudentID, registration.RoleID, activeStatuses).
			Count(&duplicates).Error; err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrDuplicateActive
		}

		if role.MaxSlots != nil {
			var active int64
			if err := tx.Model(&models.ActivityRegistration{}).
				Where("role_id = ? AND status IN ?", registration.RoleID, activeStatuses).
				Count(&active).Error; err != nil {
				return err
			}
			if active >= int64(*role.MaxSlots) {
				return ErrCapacityExceeded
			}
		}

		return tx.Create(registration).Error
	})
}

// UpdateStatus transitions a registration using compare-and-swap on the
// version column. A transition that re-activates an inactive registration can
// cross the role's slot threshold, so that capacity check shares the
// transaction with the write.
func (r *registrationRepository) UpdateStatus(ctx context.Context, id uint, expectedVersion int, status string) (models.ActivityRegistration, error) {
	var updated models.ActivityRegistration
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ActivityRegistration
		if err := lockForUpdate(tx).First(&current, id).Error; err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrStaleVersion
		}

		if models.ActiveStatus(status) && !current.Active() {
			var role models.ActivityRole
			if err := lockForUpdate(tx).First(&role, current.RoleID).Error; err != nil {
				return err
			}
			if role.MaxSlots != nil {
				var active int64
				if err := tx.Model(&models.ActivityRegistration{}).
					Where("role_id = ? AND status IN ?", current.RoleID, activeStatuses).
					Count(&active).Error; err != nil {
					return err
				}
				if active >= int64(*role.MaxSlots) {
					return ErrCapacityExceeded
				}
			}
		}

		result := tx.Model(&models.ActivityRegistration{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(map[string]interface{}{
				"status":  status,
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleVersion
		}

		return tx.First(&updated, id).Error
	})

	return updated, err
}

func (r *registrationRepository) CountActiveByRole(ctx context.Context, roleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityRegistration{}).
		Where("role_id = ? AND status IN ?", roleID, activeStatuses).
		Count(&count).Error
	return count, err
}
