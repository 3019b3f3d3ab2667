package repo

import (
	"context"
	"errors"

	"github.com/andrsk/staff-portal/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var emps []models.Employee
	if err := r.DB.WithContext(ctx).Order("id").Find(&emps).Error; err != nil {
		return nil, err
	}
	return emps, nil
}

func (r *GormRepo) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var emp models.Employee
	if err := r.DB.WithContext(ctx).First(&emp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *GormRepo) CreateEmployee(ctx context.Context, emp *models.Employee) error {
	return r.DB.WithContext(ctx).Create(emp).Error
}

func (r *GormRepo) UpdateEmployee(ctx context.Context, emp *models.Employee) error {
	tx := r.DB.WithContext(ctx).Model(&models.Employee{}).
		Where("id = ?", emp.ID).
		Updates(map[string]any{"first_name": emp.FirstName, "last_name": emp.LastName})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteEmployee(ctx context.Context, id uint) error {
	tx := r.DB.WithContext(ctx).Delete(&models.Employee{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
