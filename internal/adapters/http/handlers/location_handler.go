package handlers

import (
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LocationHandler handles company location endpoints
type LocationHandler struct {
	locationService *services.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// ArchiveRequest toggles the archived flag
type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

// List lists company locations
// @Summary List locations
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	locations, err := h.locationService.List(c.Context(), companyParam(c))
	if err != nil {
		return respondError(c, err, "list locations")
	}
	return response.Success(c, "Locations retrieved successfully", locations)
}

// GetByName finds a location by name
// @Summary Get location by name
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param name path string true "Location name"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/locations/by-name/{name} [get]
func (h *LocationHandler) GetByName(c *fiber.Ctx) error {
	location, err := h.locationService.GetByName(c.Context(), companyParam(c), c.Params("name"))
	if err != nil {
		return respondError(c, err, "get location")
	}
	return response.Success(c, "Location retrieved successfully", location)
}

// GetByAddress finds a location by address
// @Summary Get location by address
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param address query string true "Location address"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/locations/by-address [get]
func (h *LocationHandler) GetByAddress(c *fiber.Ctx) error {
	address := c.Query("address")
	if address == "" {
		return response.BadRequest(c, "Address is required")
	}

	location, err := h.locationService.GetByAddress(c.Context(), companyParam(c), address)
	if err != nil {
		return respondError(c, err, "get location")
	}
	return response.Success(c, "Location retrieved successfully", location)
}

// Create adds a location
// @Summary Create location
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param body body services.CreateLocationInput true "Location"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /companies/{companyId}/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var input services.CreateLocationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	location, err := h.locationService.Create(c.Context(), companyParam(c), &input)
	if err != nil {
		return respondError(c, err, "create location")
	}
	return response.Created(c, "Location created successfully", location)
}

// SetArchived archives or restores a location
// @Summary Archive location
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param name path string true "Location name"
// @Param body body ArchiveRequest true "Archived flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/locations/by-name/{name}/archive [patch]
func (h *LocationHandler) SetArchived(c *fiber.Ctx) error {
	var req ArchiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	location, err := h.locationService.SetArchived(c.Context(), companyParam(c), c.Params("name"), req.Archived)
	if err != nil {
		return respondError(c, err, "archive location")
	}
	return response.Success(c, "Location updated successfully", location)
}

// Delete removes a location
// @Summary Delete location
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param id path int true "Location ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/locations/{id} [delete]
func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid location ID")
	}

	if err := h.locationService.Delete(c.Context(), companyParam(c), id); err != nil {
		return respondError(c, err, "delete location")
	}
	return response.Success(c, "Location deleted successfully", nil)
}
