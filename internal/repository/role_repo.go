package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/models"
)

// RoleRepository provides access to activity roles. Capacity-sensitive writes
// are evaluated inside one transaction so concurrent registrations cannot
// both observe a free slot.
type RoleRepository interface {
	GetByID(ctx context.Context, id uint) (models.ActivityRole, error)
	ListByActivity(ctx context.Context, activityID uint) ([]models.ActivityRole, error)
	Create(ctx context.Context, role *models.ActivityRole) error
	UpdateMaxSlots(ctx context.Context, id uint, maxSlots *int) (models.ActivityRole, error)
	Delete(ctx context.Context, id uint) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository constructs a role repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByID(ctx context.Context, id uint) (models.ActivityRole, error) {
	var role models.ActivityRole
	err := r.db.WithContext(ctx).Preload("Activity").First(&role, id).Error
	return role, err
}

func (r *roleRepository) ListByActivity(ctx context.Context, activityID uint) ([]models.ActivityRole, error) {
	var roles []models.ActivityRole
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("id ASC").
		Find(&roles).Error
	return roles, err
}

func (r *roleRepository) Create(ctx context.Context, role *models.ActivityRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// UpdateMaxSlots changes a role's capacity. Reductions below the current
// active-registration count are rejected under a row lock.
func (r *roleRepository) UpdateMaxSlots(ctx context.Context, id uint, maxSlots *int) (models.ActivityRole, error) {
	var role models.ActivityRole
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&role, id).Error; err != nil {
			return err
		}

		if maxSlots != nil {
			var active int64
			if err := tx.Model(&models.ActivityRegistration{}).
				Where("role_id = ? AND status IN ?", id, activeStatuses).
				Count(&active).Error; err != nil {
				return err
			}
			if int64(*maxSlots) < active {
				return ErrCapacityExceeded
			}
		}

		role.MaxSlots = maxSlots
		return tx.Model(&role).Update("max_slots", maxSlots).Error
	})

	return role, err
}

// Delete removes a role unless active registrations still reference it.
func (r *roleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.ActivityRole
		if err := lockForUpdate(tx).First(&role, id).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.ActivityRegistration{}).
			Where("role_id = ? AND status IN ?", id, activeStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveRegistrations
		}

		return tx.Delete(&models.ActivityRole{}, id).Error
	})
}
