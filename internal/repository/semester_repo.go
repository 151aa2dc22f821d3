package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/models"
)

// SemesterRepository provides access to academic semesters.
type SemesterRepository interface {
	GetByID(ctx context.Context, id uint) (models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
}

type semesterRepository struct {
	db *gorm.DB
}

// NewSemesterRepository constructs a semester repository.
func NewSemesterRepository(db *gorm.DB) SemesterRepository {
	return &semesterRepository{db: db}
}

func (r *semesterRepository) GetByID(ctx context.Context, id uint) (models.Semester, error) {
	var semester models.Semester
	err := r.db.WithContext(ctx).First(&semester, id).Error
	return semester, err
}

func (r *semesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&semesters).Error
	return semesters, err
}
