package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrsk/staff-portal/internal/models"
	"github.com/andrsk/staff-portal/internal/repo"
	"github.com/andrsk/staff-portal/internal/search"
	"github.com/andrsk/staff-portal/pkg/logging"
)

type EmployeeService struct {
	Repo  *repo.GormRepo
	Index *search.Index
}

func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	emps, err := s.Repo.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list employees: %v", ErrInternal, err)
	}
	return emps, nil
}

func (s *EmployeeService) Get(ctx context.Context, id uint) (*models.Employee, error) {
	emp, err := s.Repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get employee: %v", ErrInternal, err)
	}
	return emp, nil
}

func (s *EmployeeService) Create(ctx context.Context, firstName, lastName string) (*models.Employee, error) {
	if firstName == "" || lastName == "" {
		return nil, ErrBadRequest
	}

	emp := models.Employee{FirstName: firstName, LastName: lastName}
	if err := s.Repo.CreateEmployee(ctx, &emp); err != nil {
		return nil, fmt.Errorf("%w: create employee: %v", ErrInternal, err)
	}

	s.reindex(ctx, &emp)
	return &emp, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uint, firstName, lastName string) (*models.Employee, error) {
	if firstName == "" || lastName == "" {
		return nil, ErrBadRequest
	}

	emp := models.Employee{ID: id, FirstName: firstName, LastName: lastName}
	if err := s.Repo.UpdateEmployee(ctx, &emp); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: update employee: %v", ErrInternal, err)
	}

	s.reindex(ctx, &emp)
	return &emp, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: delete employee: %v", ErrInternal, err)
	}

	if err := s.Index.DeleteEmployee(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("index_delete_failed", "id", id, "error", err)
	}
	return nil
}

func (s *EmployeeService) Search(ctx context.Context, query string, from, size int) (int64, []models.Employee, error) {
	total, emps, err := s.Index.Search(ctx, query, from, size)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: search employees: %v", ErrInternal, err)
	}
	return total, emps, nil
}

// reindex is best-effort, same policy as event publishing: the write
// already succeeded, a stale index is repaired by the next write.
func (s *EmployeeService) reindex(ctx context.Context, emp *models.Employee) {
	if err := s.Index.IndexEmployee(ctx, emp); err != nil {
		logging.FromContext(ctx).Warn("index_failed", "id", emp.ID, "error", err)
	}
}
