package repository

import (
	"errors"
	"time"

	"go-clinic-scheduler/internal/domain/entity"
	domainRepo "go-clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Create(doctor).Error
}

func (r *doctorRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Order("full_name ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// CountByNamePrefix counts doctors named exactly fullName or fullName-N.
func (r *doctorRepository) CountByNamePrefix(db *gorm.DB, fullName string) (int64, error) {
	var count int64
	err := db.Model(&entity.Doctor{}).
		Where("full_name = ? OR full_name ~ ?", fullName, entity.NameVariantPattern(fullName)).
		Count(&count).Error
	return count, err
}

func (r *doctorRepository) UpdateAvailability(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Model(doctor).
		Select("from_slot", "to_slot", "patients_per_slot", "mode_of_appointment",
			"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday").
		Updates(doctor).Error
}

func (r *doctorRepository) UpdateWindow(db *gorm.DB, doctorID uuid.UUID, fromDate, toDate time.Time) error {
	result := db.Model(&entity.Doctor{}).
		Where("id = ?", doctorID).
		Updates(map[string]interface{}{"from_date": fromDate, "to_date": toDate})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
