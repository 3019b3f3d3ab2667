package service

import (
	"context"
	"testing"

	"github.com/andrsk/staff-portal/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmployeeService(t *testing.T) *EmployeeService {
	t.Helper()

	return &EmployeeService{
		Repo: &repo.GormRepo{DB: newTestDB(t)},
	}
}

func TestEmployeeService_CRUD(t *testing.T) {
	t.Parallel()

	svc := newTestEmployeeService(t)
	ctx := context.Background()

	emp, err := svc.Create(ctx, "Dave", "Gray")
	require.NoError(t, err)
	require.NotZero(t, emp.ID)

	got, err := svc.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dave", got.FirstName)

	updated, err := svc.Update(ctx, emp.ID, "David", "Gray")
	require.NoError(t, err)
	assert.Equal(t, "David", updated.FirstName)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, emp.ID))

	_, err = svc.Get(ctx, emp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeService_NotFoundAndValidation(t *testing.T) {
	t.Parallel()

	svc := newTestEmployeeService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, 42, "David", "Gray")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 42), ErrNotFound)

	_, err = svc.Create(ctx, "", "Gray")
	assert.ErrorIs(t, err, ErrBadRequest)
}
