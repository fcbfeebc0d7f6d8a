package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"loyalwallet/internal/adapters/http/middleware"
	"loyalwallet/internal/core/domain"
	"loyalwallet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto the API error responses.
// action names what failed for the 500 message.
func respondError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInvalidReference):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientRewards):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrExternalService):
		return response.BadGateway(c, "Wallet provider is unavailable")
	default:
		log.Printf("❌ %s: %v", action, err)
		return response.InternalServerError(c, "Failed to "+action)
	}
}

// companyParam reads the :companyId path parameter checked by CompanyScope
func companyParam(c *fiber.Ctx) uint {
	id, _ := c.ParamsInt("companyId")
	return uint(id)
}

// idParam reads a positive numeric path parameter
func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

func accountID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(middleware.LocalAccountID).(uint)
	return id, ok
}

// dateRange reads the optional start and end query parameters. Dates
// without a time of day cover the whole day.
func dateRange(c *fiber.Ctx) (domain.DateRange, error) {
	var r domain.DateRange

	start, err := parseDate(c.Query("start"), false)
	if err != nil {
		return r, err
	}
	end, err := parseDate(c.Query("end"), true)
	if err != nil {
		return r, err
	}

	r.Start, r.End = start, end
	if !r.Valid() {
		return r, errors.New("start date is after end date")
	}
	return r, nil
}

func parseDate(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	// Scans are stamped with the server clock, so whole days follow its zone
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, errors.New("invalid date " + strconv.Quote(value) + ", use YYYY-MM-DD or RFC3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
