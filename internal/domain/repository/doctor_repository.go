package repository

import (
	"time"

	"go-clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error)
	FindAll(db *gorm.DB) ([]entity.Doctor, error)
	CountByNamePrefix(db *gorm.DB, fullName string) (int64, error)
	UpdateAvailability(db *gorm.DB, doctor *entity.Doctor) error
	UpdateWindow(db *gorm.DB, doctorID uuid.UUID, fromDate, toDate time.Time) error
}
