package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/models"
)

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	SemesterID *uint
	OwnerID    *uint
}

// ActivityRepository provides access to activities.
type ActivityRepository interface {
	GetByID(ctx context.Context, id uint) (models.Activity, error)
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs an activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).Preload("Roles").First(&activity, id).Error
	return activity, err
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Preload("Roles")

	if filter.SemesterID != nil {
		query = query.Where("semester_id = ?", *filter.SemesterID)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	var activities []models.Activity
	err := query.Order("starts_at ASC, id ASC").Find(&activities).Error
	return activities, err
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) Update(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}
