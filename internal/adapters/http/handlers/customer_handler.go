package handlers

import (
	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/pagination"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles card holder endpoints: listing and phone sign up
type CustomerHandler struct {
	customerService   *services.CustomerService
	activationService *services.ActivationService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *services.CustomerService, activationService *services.ActivationService) *CustomerHandler {
	return &CustomerHandler{
		customerService:   customerService,
		activationService: activationService,
	}
}

// RegisterClientRequest represents a phone sign up
type RegisterClientRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// ConfirmClientRequest represents a pin confirmation
type ConfirmClientRequest struct {
	PhoneNumber string `json:"phone_number"`
	Pin         string `json:"pin"`
}

// List lists company customers
// @Summary List customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /companies/{companyId}/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	customers, total, err := h.customerService.List(c.Context(), companyParam(c), params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err, "list customers")
	}
	return response.Success(c, "Customers retrieved successfully", pagination.NewResponse(customers, params, total))
}

// GetByPhone finds a customer by phone number
// @Summary Get customer by phone
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param phone path string true "Phone number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/customers/by-phone/{phone} [get]
func (h *CustomerHandler) GetByPhone(c *fiber.Ctx) error {
	customer, err := h.customerService.GetByPhone(c.Context(), companyParam(c), c.Params("phone"))
	if err != nil {
		return respondError(c, err, "get customer")
	}
	return response.Success(c, "Customer retrieved successfully", customer)
}

// RegisterClient starts phone sign up for a card
// @Summary Register client
// @Description Texts a confirmation pin, or the card link again for confirmed phones
// @Tags Customers
// @Accept json
// @Produce json
// @Param companyId path int true "Company ID"
// @Param body body RegisterClientRequest true "Phone"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /companies/{companyId}/clients/register [post]
func (h *CustomerHandler) RegisterClient(c *fiber.Ctx) error {
	var req RegisterClientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	outcome, err := h.activationService.RegisterClient(c.Context(), companyParam(c), req.PhoneNumber)
	if err != nil {
		return respondError(c, err, "register client")
	}
	return response.Success(c, "Client registration started", fiber.Map{
		"status": outcome,
	})
}

// ConfirmClient confirms the texted pin and issues the card
// @Summary Confirm client
// @Tags Customers
// @Accept json
// @Produce json
// @Param companyId path int true "Company ID"
// @Param body body ConfirmClientRequest true "Phone and pin"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/clients/confirm [post]
func (h *CustomerHandler) ConfirmClient(c *fiber.Ctx) error {
	var req ConfirmClientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	card, err := h.activationService.ConfirmClient(c.Context(), companyParam(c), req.PhoneNumber, req.Pin)
	if err != nil {
		return respondError(c, err, "confirm client")
	}
	return response.Success(c, "Client confirmed, card issued", card)
}
