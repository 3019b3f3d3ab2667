package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andrsk/staff-portal/internal/service"
	"github.com/labstack/echo/v4"
)

type EmployeeHTTP struct {
	Svc *service.EmployeeService
}

type employeeRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

func (h *EmployeeHTTP) List(c echo.Context) error {
	emps, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list employees")
	}
	return c.JSON(http.StatusOK, emps)
}

func (h *EmployeeHTTP) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	emp, getErr := h.Svc.Get(c.Request().Context(), id)
	if getErr != nil {
		if errors.Is(getErr, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get employee")
	}
	return c.JSON(http.StatusOK, emp)
}

func (h *EmployeeHTTP) Create(c echo.Context) error {
	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	emp, err := h.Svc.Create(c.Request().Context(), req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			return echo.NewHTTPError(http.StatusBadRequest, "firstname and lastname are required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create employee")
	}
	return c.JSON(http.StatusCreated, emp)
}

func (h *EmployeeHTTP) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	emp, updErr := h.Svc.Update(c.Request().Context(), id, req.FirstName, req.LastName)
	if updErr != nil {
		switch {
		case errors.Is(updErr, service.ErrBadRequest):
			return echo.NewHTTPError(http.StatusBadRequest, "firstname and lastname are required")
		case errors.Is(updErr, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update employee")
		}
	}
	return c.JSON(http.StatusOK, emp)
}

func (h *EmployeeHTTP) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if delErr := h.Svc.Delete(c.Request().Context(), id); delErr != nil {
		if errors.Is(delErr, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete employee")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EmployeeHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 1 {
		page = 1
	}
	from := (page - 1) * size

	total, emps, err := h.Svc.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "employees": emps})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
	}
	return uint(id), nil
}
