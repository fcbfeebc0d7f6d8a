package handlers

import (
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	companyService *services.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// List lists all companies
// @Summary List companies
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	companies, err := h.companyService.List(c.Context())
	if err != nil {
		return respondError(c, err, "list companies")
	}
	return response.Success(c, "Companies retrieved successfully", companies)
}

// GetByName finds a company by name
// @Summary Get company by name
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param name path string true "Company name"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/by-name/{name} [get]
func (h *CompanyHandler) GetByName(c *fiber.Ctx) error {
	company, err := h.companyService.GetByName(c.Context(), c.Params("name"))
	if err != nil {
		return respondError(c, err, "get company")
	}
	return response.Success(c, "Company retrieved successfully", company)
}

// Get returns a company
// @Summary Get company
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId} [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	company, err := h.companyService.GetByID(c.Context(), companyParam(c))
	if err != nil {
		return respondError(c, err, "get company")
	}
	return response.Success(c, "Company retrieved successfully", company)
}

// Update changes company settings
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param body body services.UpdateCompanyInput true "Company settings"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var input services.UpdateCompanyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	company, err := h.companyService.Update(c.Context(), companyParam(c), &input)
	if err != nil {
		return respondError(c, err, "update company")
	}
	return response.Success(c, "Company updated successfully", company)
}

// Delete removes a company
// @Summary Delete company
// @Tags Companies
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	if err := h.companyService.Delete(c.Context(), companyParam(c)); err != nil {
		return respondError(c, err, "delete company")
	}
	return response.Success(c, "Company deleted successfully", nil)
}

// UpdateCardTemplate pushes new card branding to the wallet provider
// @Summary Update card template
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param body body services.CardTemplateInput true "Card branding"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /companies/{companyId}/card-template [put]
func (h *CompanyHandler) UpdateCardTemplate(c *fiber.Ctx) error {
	var input services.CardTemplateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tpl, err := h.companyService.UpdateCardTemplate(c.Context(), companyParam(c), &input)
	if err != nil {
		return respondError(c, err, "update card template")
	}
	return response.Success(c, "Card template updated successfully", tpl)
}
