package handlers

import (
	"strconv"

	"loyalwallet/internal/core/services"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LedgerHandler handles stamping, present redemption and card push messages
type LedgerHandler struct {
	ledgerService *services.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// ScanCardRequest carries the link read from a card QR code
type ScanCardRequest struct {
	URI string `json:"uri"`
}

// TakePresentRequest represents a present redemption
type TakePresentRequest struct {
	CustomerID uint `json:"customer_id"`
	EmployeeID uint `json:"employee_id"`
}

// PushMessageRequest represents a marketing push. No serials means every confirmed card.
type PushMessageRequest struct {
	Message string  `json:"message"`
	Serials []int64 `json:"serials"`
}

// ScanCard stamps a scanned card
// @Summary Stamp a card
// @Description Adds one stamp to the card in the scanned QR link on behalf of the employee
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param employeeId path int true "Employee ID"
// @Param body body ScanCardRequest true "Scanned link"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /companies/{companyId}/cards/check/{employeeId} [post]
func (h *LedgerHandler) ScanCard(c *fiber.Ctx) error {
	employeeID, ok := idParam(c, "employeeId")
	if !ok {
		return response.BadRequest(c, "Invalid employee ID")
	}
	var req ScanCardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.URI == "" {
		return response.BadRequest(c, "Card link is required")
	}

	result, err := h.ledgerService.ScanCard(c.Context(), companyParam(c), req.URI, employeeID)
	if err != nil {
		return respondError(c, err, "stamp card")
	}
	return response.Success(c, "Stamp added", result)
}

// TakePresent redeems one stored present
// @Summary Give a present
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param body body TakePresentRequest true "Customer and employee"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /companies/{companyId}/presents [post]
func (h *LedgerHandler) TakePresent(c *fiber.Ctx) error {
	var req TakePresentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CustomerID == 0 || req.EmployeeID == 0 {
		return response.BadRequest(c, "Customer and employee are required")
	}

	result, err := h.ledgerService.TakePresent(c.Context(), companyParam(c), req.CustomerID, req.EmployeeID)
	if err != nil {
		return respondError(c, err, "give present")
	}
	return response.Success(c, "Present given", result)
}

// PushMessage queues a push message to company cards
// @Summary Push message to cards
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param body body PushMessageRequest true "Message and optional serials"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /companies/{companyId}/pushmessage [post]
func (h *LedgerHandler) PushMessage(c *fiber.Ctx) error {
	var req PushMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	queued, err := h.ledgerService.PushMessage(c.Context(), companyParam(c), req.Message, req.Serials)
	if err != nil {
		return respondError(c, err, "queue push message")
	}
	return c.Status(fiber.StatusAccepted).JSON(response.Response{
		Success: true,
		Message: "Push message queued",
		Data:    fiber.Map{"cards": queued},
	})
}

// RefreshCard queues a re-push of one card to its holder's device
// @Summary Refresh a card on the device
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param serial path int true "Card serial number"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /companies/{companyId}/cards/{serial}/push [post]
func (h *LedgerHandler) RefreshCard(c *fiber.Ctx) error {
	serial, err := strconv.ParseInt(c.Params("serial"), 10, 64)
	if err != nil || serial <= 0 {
		return response.BadRequest(c, "Invalid serial number")
	}

	if err := h.ledgerService.RefreshCard(c.Context(), companyParam(c), serial); err != nil {
		return respondError(c, err, "refresh card")
	}
	return c.Status(fiber.StatusAccepted).JSON(response.Response{
		Success: true,
		Message: "Card refresh queued",
	})
}
