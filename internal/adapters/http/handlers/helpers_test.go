package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loyalwallet/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("customer 7: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("bad phone: %w", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("employee of another company: %w", domain.ErrInvalidReference), http.StatusUnprocessableEntity},
		{domain.ErrInsufficientRewards, http.StatusUnprocessableEntity},
		{fmt.Errorf("email taken: %w", domain.ErrDuplicateEntry), http.StatusConflict},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("timeout: %w", domain.ErrExternalService), http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, tt.err, "do things")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("", false)
	require.NoError(t, err)
	assert.Nil(t, got, "empty means unbounded")

	got, err = parseDate("2024-06-03", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.Local), *got, "whole days use the server zone")

	got, err = parseDate("2024-06-03", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 23, 59, 59, int(time.Second-time.Nanosecond), time.Local), *got)

	got, err = parseDate("2024-06-03T10:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC), *got, "explicit times are kept")

	_, err = parseDate("03/06/2024", false)
	assert.Error(t, err)
}

func TestParseDate_WholeDayFollowsServerZone(t *testing.T) {
	saved := time.Local
	time.Local = time.FixedZone("UTC+3", 3*60*60)
	t.Cleanup(func() { time.Local = saved })

	start, err := parseDate("2024-06-03", false)
	require.NoError(t, err)
	end, err := parseDate("2024-06-03", true)
	require.NoError(t, err)

	// a scan at 01:30 local time is 22:30 UTC on the previous day
	scan := time.Date(2024, 6, 3, 1, 30, 0, 0, time.Local)
	assert.False(t, scan.Before(*start))
	assert.False(t, scan.After(*end))
	assert.Equal(t, time.Date(2024, 6, 2, 21, 0, 0, 0, time.UTC), start.UTC())
}

func TestDateRange(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		r, err := dateRange(c)
		if err != nil {
			return c.Status(http.StatusBadRequest).SendString(err.Error())
		}
		if r.Start == nil && r.End == nil {
			return c.SendString("open")
		}
		return c.SendString("bounded")
	})

	for query, want := range map[string]int{
		"":                                 http.StatusOK,
		"?start=2024-06-01&end=2024-06-01": http.StatusOK,
		"?start=2024-06-02&end=2024-06-01": http.StatusBadRequest,
		"?start=yesterday":                 http.StatusBadRequest,
		"?end=2024-06-30T00:00:00%2B02:00": http.StatusOK,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+query, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, query)
	}
}
