package handlers

import (
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EmployeeHandler handles company employee endpoints
type EmployeeHandler struct {
	employeeService *services.EmployeeService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employeeService *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// List lists company employees
// @Summary List employees
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Success 200 {object} response.Response
// @Router /companies/{companyId}/employees [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.employeeService.List(c.Context(), companyParam(c))
	if err != nil {
		return respondError(c, err, "list employees")
	}
	return response.Success(c, "Employees retrieved successfully", employees)
}

// Get returns one employee
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/employees/{id} [get]
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid employee ID")
	}

	employee, err := h.employeeService.Get(c.Context(), companyParam(c), id)
	if err != nil {
		return respondError(c, err, "get employee")
	}
	return response.Success(c, "Employee retrieved successfully", employee)
}

// GetByName finds an employee by name and surname
// @Summary Get employee by name
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param name query string true "Name"
// @Param surname query string true "Surname"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/employees/by-name [get]
func (h *EmployeeHandler) GetByName(c *fiber.Ctx) error {
	name, surname := c.Query("name"), c.Query("surname")
	if name == "" || surname == "" {
		return response.BadRequest(c, "Name and surname are required")
	}

	employee, err := h.employeeService.GetByName(c.Context(), companyParam(c), name, surname)
	if err != nil {
		return respondError(c, err, "get employee")
	}
	return response.Success(c, "Employee retrieved successfully", employee)
}

// Create adds an employee
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param body body services.CreateEmployeeInput true "Employee"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /companies/{companyId}/employees [post]
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	var input services.CreateEmployeeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	employee, err := h.employeeService.Create(c.Context(), companyParam(c), &input)
	if err != nil {
		return respondError(c, err, "create employee")
	}
	return response.Created(c, "Employee created successfully", employee)
}

// SetArchived archives or restores an employee
// @Summary Archive employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param id path int true "Employee ID"
// @Param body body ArchiveRequest true "Archived flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/employees/{id}/archive [patch]
func (h *EmployeeHandler) SetArchived(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid employee ID")
	}
	var req ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	employee, err := h.employeeService.SetArchived(c.Context(), companyParam(c), id, req.Archived)
	if err != nil {
		return respondError(c, err, "archive employee")
	}
	return response.Success(c, "Employee updated successfully", employee)
}

// Delete removes an employee
// @Summary Delete employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid employee ID")
	}

	if err := h.employeeService.Delete(c.Context(), companyParam(c), id); err != nil {
		return respondError(c, err, "delete employee")
	}
	return response.Success(c, "Employee deleted successfully", nil)
}
