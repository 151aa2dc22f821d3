package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/models"
)

// ScheduleRepository reads class timetable blocks mirrored from the academic
// timetable system.
type ScheduleRepository interface {
	ListByClassAndSemester(ctx context.Context, classID, semesterID uint) ([]models.ClassScheduleBlock, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) ListByClassAndSemester(ctx context.Context, classID, semesterID uint) ([]models.ClassScheduleBlock, error) {
	var blocks []models.ClassScheduleBlock
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND semester_id = ?", classID, semesterID).
		Order("starts_at ASC, id ASC").
		Find(&blocks).Error
	return blocks, err
}
