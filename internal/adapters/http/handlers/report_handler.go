package handlers

import (
	"context"

	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/pagination"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles company statistics endpoints
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// filter builds the report filter from the query string
func (h *ReportHandler) filter(c *fiber.Ctx) (domain.ScanFilter, error) {
	r, err := dateRange(c)
	if err != nil {
		return domain.ScanFilter{}, err
	}
	return domain.ScanFilter{
		CompanyID:    companyParam(c),
		EmployeeID:   uint(c.QueryInt("employee_id", 0)),
		LocationName: c.Query("location"),
		Range:        r,
	}, nil
}

// count serves one of the single number reports
func (h *ReportHandler) count(c *fiber.Ctx, key string, fn func(domain.ScanFilter) (int64, error)) error {
	filter, err := h.filter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	n, err := fn(filter)
	if err != nil {
		return respondError(c, err, "build report")
	}
	return response.Success(c, "Report generated successfully", fiber.Map{key: n})
}

// Summary returns cards, stamps and presents counts together
// @Summary Company report summary
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param start query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param end query string false "End date, inclusive"
// @Param location query string false "Location name"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	filter, err := h.filter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	summary, err := h.reportService.Summary(c.Context(), filter)
	if err != nil {
		return respondError(c, err, "build report")
	}
	return response.Success(c, "Report generated successfully", summary)
}

// AllCards counts scans
// @Summary Count card scans
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param start query string false "Start date"
// @Param end query string false "End date, inclusive"
// @Param location query string false "Location name"
// @Success 200 {object} response.Response
// @Router /companies/{companyId}/reports/cards [get]
func (h *ReportHandler) AllCards(c *fiber.Ctx) error {
	return h.count(c, "all_cards_count", func(f domain.ScanFilter) (int64, error) {
		return h.reportService.AllCardsCount(c.Context(), f)
	})
}

// AllStamps sums current stamps of scanned customers
// @Summary Sum stamps
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param start query string false "Start date"
// @Param end query string false "End date, inclusive"
// @Param location query string false "Location name"
// @Success 200 {object} response.Response
// @Router /companies/{companyId}/reports/stamps [get]
func (h *ReportHandler) AllStamps(c *fiber.Ctx) error {
	return h.count(c, "all_stamps_count", func(f domain.ScanFilter) (int64, error) {
		return h.reportService.AllStampsCount(c.Context(), f)
	})
}

// AllPresents sums presents given to scanned customers
// @Summary Sum presents
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param start query string false "Start date"
// @Param end query string false "End date, inclusive"
// @Param location query string false "Location name"
// @Success 200 {object} response.Response
// @Router /companies/{companyId}/reports/presents [get]
func (h *ReportHandler) AllPresents(c *fiber.Ctx) error {
	return h.count(c, "all_presents_count", func(f domain.ScanFilter) (int64, error) {
		return h.reportService.AllPresentsCount(c.Context(), f)
	})
}

// Scans lists matching scans, newest first
// @Summary List scans
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param start query string false "Start date"
// @Param end query string false "End date, inclusive"
// @Param location query string false "Location name"
// @Param employee_id query int false "Employee ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /companies/{companyId}/reports/scans [get]
func (h *ReportHandler) Scans(c *fiber.Ctx) error {
	filter, err := h.filter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	params := pagination.GetParams(c)

	scans, total, err := h.reportService.Scans(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err, "list scans")
	}
	return response.Success(c, "Scans retrieved successfully", pagination.NewResponse(scans, params, total))
}

// EmployeeStamps returns the stamps an employee handed out
// @Summary Employee stamps
// @Description Fails with 404 when the employee has no scans in the range
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param id path int true "Employee ID"
// @Param start query string false "Start date"
// @Param end query string false "End date, inclusive"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/employees/{id}/stamps [get]
func (h *ReportHandler) EmployeeStamps(c *fiber.Ctx) error {
	return h.employeeCount(c, "count_of_stamps", h.reportService.EmployeeCountOfStamps)
}

// EmployeePresents returns the presents an employee handed out
// @Summary Employee presents
// @Description Fails with 404 when the employee has no scans in the range
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param id path int true "Employee ID"
// @Param start query string false "Start date"
// @Param end query string false "End date, inclusive"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/employees/{id}/presents [get]
func (h *ReportHandler) EmployeePresents(c *fiber.Ctx) error {
	return h.employeeCount(c, "count_of_presents", h.reportService.EmployeeCountOfPresents)
}

func (h *ReportHandler) employeeCount(
	c *fiber.Ctx,
	key string,
	fn func(ctx context.Context, companyID, employeeID uint, r domain.DateRange) (int, error),
) error {
	id, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid employee ID")
	}
	r, err := dateRange(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	n, err := fn(c.Context(), companyParam(c), id, r)
	if err != nil {
		return respondError(c, err, "build employee report")
	}
	return response.Success(c, "Report generated successfully", fiber.Map{key: n})
}
