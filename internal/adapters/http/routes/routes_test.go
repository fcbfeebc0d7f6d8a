package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"loyalwallet/internal/adapters/http/middleware"
	"loyalwallet/internal/adapters/http/routes"
	"loyalwallet/internal/config"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/pkg/password"
	"loyalwallet/internal/pkg/serial"
	"loyalwallet/internal/pkg/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type nopWallet struct{}

func (nopWallet) CreateOrUpdateCard(context.Context, int64, string, cards.Card, bool) error {
	return nil
}
func (nopWallet) SendSms(context.Context, int64, string, string) error         { return nil }
func (nopWallet) SendPushMessage(context.Context, string, []int64) error       { return nil }
func (nopWallet) PushUpdate(context.Context, int64) error                      { return nil }
func (nopWallet) UpdateTemplate(context.Context, string, cards.Template) error { return nil }

// staticPins accepts "1234" for every token it hands out
type staticPins struct{}

func (staticPins) SendPin(_ context.Context, phone, _ string, _ int) (string, error) {
	return "tok-" + phone, nil
}

func (staticPins) CheckPin(_ context.Context, _, pin string) (bool, error) {
	return pin == "1234", nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type api struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *api {
	t.Helper()
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = password.DefaultCost })

	db := testdb.New(t)
	config.DB = db

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{SameSite: "lax"},
	}
	serials, err := serial.NewGenerator(3)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	routes.Setup(app, db, cfg, routes.Deps{
		Wallet:    nopWallet{},
		Pins:      staticPins{},
		Presenter: cards.NewPresenter("https://cards.test"),
		Serials:   serials,
	})
	return &api{t: t, app: app}
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

type owner struct {
	token     string
	companyID uint
}

// signUp registers, confirms and logs in a company owner
func (a *api) signUp(email, company string) owner {
	a.t.Helper()

	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "s3cret-pass", "company_name": company,
	})
	require.Equal(a.t, http.StatusCreated, status, env.Error)
	var registered struct {
		Account struct {
			ID        uint `json:"id"`
			CompanyID uint `json:"company_id"`
		} `json:"account"`
		ConfirmationToken string `json:"confirmation_token"`
	}
	decode(a.t, env, &registered)
	require.NotEmpty(a.t, registered.ConfirmationToken)

	status, env = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "s3cret-pass",
	})
	require.Equal(a.t, http.StatusForbidden, status, "login before confirmation")

	status, env = a.do(http.MethodPost, "/api/v1/auth/confirm-email", "", map[string]interface{}{
		"account_id": registered.Account.ID, "token": registered.ConfirmationToken,
	})
	require.Equal(a.t, http.StatusOK, status, env.Error)

	status, env = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "s3cret-pass",
	})
	require.Equal(a.t, http.StatusOK, status, env.Error)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decode(a.t, env, &login)
	require.NotEmpty(a.t, login.AccessToken)

	return owner{token: login.AccessToken, companyID: registered.Account.CompanyID}
}

func (o owner) path(format string, args ...interface{}) string {
	return fmt.Sprintf("/api/v1/companies/%d", o.companyID) + fmt.Sprintf(format, args...)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	status, _ := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := a.do(http.MethodGet, "/api/v1/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"version":"1.0.0"}`, string(env.Data))
}

func TestStampingFlow(t *testing.T) {
	a := newAPI(t)
	o := a.signUp("owner@coffee.test", "Coffee")

	status, env := a.do(http.MethodPost, o.path("/locations"), o.token, map[string]string{
		"name": "Centre", "address": "1 High Street",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var location struct {
		ID uint `json:"id"`
	}
	decode(t, env, &location)

	status, env = a.do(http.MethodPost, o.path("/employees"), o.token, map[string]interface{}{
		"location_id": location.ID, "name": "Ann", "surname": "Barista",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var employee struct {
		ID uint `json:"id"`
	}
	decode(t, env, &employee)

	status, env = a.do(http.MethodPost, o.path("/clients/register"), "", map[string]string{
		"phone_number": "+447000000001",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"status":"pin_sent"}`, string(env.Data))

	status, env = a.do(http.MethodPost, o.path("/clients/confirm"), "", map[string]string{
		"phone_number": "+447000000001", "pin": "0000",
	})
	assert.Equal(t, http.StatusBadRequest, status, "wrong pin")

	status, env = a.do(http.MethodPost, o.path("/clients/confirm"), "", map[string]string{
		"phone_number": "+447000000001", "pin": "1234",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	var card cards.Card
	decode(t, env, &card)
	require.NotNil(t, card.Barcode)

	for i := 0; i < 2; i++ {
		status, env = a.do(http.MethodPost, o.path("/cards/check/%d", employee.ID), o.token, map[string]string{
			"uri": card.Barcode.Message,
		})
		require.Equal(t, http.StatusOK, status, env.Error)
	}
	var stamped struct {
		Customer struct {
			ID            uint  `json:"id"`
			SerialNumber  int64 `json:"serial_number"`
			CountOfStamps int   `json:"count_of_stamps"`
		} `json:"customer"`
	}
	decode(t, env, &stamped)
	assert.Equal(t, 2, stamped.Customer.CountOfStamps)

	status, env = a.do(http.MethodPost, o.path("/cards/check/%d", employee.ID), o.token, map[string]string{
		"uri": "https://cards.test/?serial_number=abc",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.do(http.MethodPost, o.path("/cards/%d/push", stamped.Customer.SerialNumber), o.token, nil)
	assert.Equal(t, http.StatusAccepted, status, env.Error)

	status, _ = a.do(http.MethodPost, o.path("/cards/42/push"), o.token, nil)
	assert.Equal(t, http.StatusNotFound, status, "unknown card")

	status, env = a.do(http.MethodPost, o.path("/presents"), o.token, map[string]interface{}{
		"customer_id": stamped.Customer.ID, "employee_id": employee.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "no stored presents yet")

	status, env = a.do(http.MethodGet, o.path("/reports/summary"), o.token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"all_cards_count":2,"all_stamps_count":2,"all_presents_count":0}`, string(env.Data))

	status, env = a.do(http.MethodGet, o.path("/employees/%d/stamps", employee.ID), o.token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, _ = a.do(http.MethodGet, o.path("/reports/summary?start=2024-06-30&end=2024-06-01"), o.token, nil)
	assert.Equal(t, http.StatusBadRequest, status, "inverted range")

	status, env = a.do(http.MethodPost, o.path("/clients/register"), "", map[string]string{
		"phone_number": "+447000000001",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"status":"card_sent"}`, string(env.Data))
}

func TestAccessControl(t *testing.T) {
	a := newAPI(t)
	coffee := a.signUp("owner@coffee.test", "Coffee")
	bakery := a.signUp("owner@bakery.test", "Bakery")

	status, _ := a.do(http.MethodGet, coffee.path("/locations"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "no token")

	status, _ = a.do(http.MethodGet, coffee.path("/locations"), "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "garbage token")

	status, _ = a.do(http.MethodGet, bakery.path("/reports/summary"), coffee.token, nil)
	assert.Equal(t, http.StatusForbidden, status, "other company")

	status, _ = a.do(http.MethodGet, "/api/v1/companies/", coffee.token, nil)
	assert.Equal(t, http.StatusForbidden, status, "listing companies is admin only")

	status, _ = a.do(http.MethodDelete, bakery.path(""), bakery.token, nil)
	assert.Equal(t, http.StatusForbidden, status, "deleting companies is admin only")

	status, env := a.do(http.MethodGet, coffee.path(""), coffee.token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var company struct {
		Name string `json:"name"`
	}
	decode(t, env, &company)
	assert.Equal(t, "Coffee", company.Name)

	status, env = a.do(http.MethodGet, "/api/v1/auth/me", bakery.token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), "owner@bakery.test")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := newAPI(t)
	a.signUp("owner@coffee.test", "Coffee")

	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "owner@coffee.test", "password": "s3cret-pass", "company_name": "Again",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
}

func TestClientSignUpNeedsNoLogin(t *testing.T) {
	a := newAPI(t)
	o := a.signUp("owner@coffee.test", "Coffee")

	status, env := a.do(http.MethodPost, o.path("/clients/register"), "", map[string]string{
		"phone_number": "+44 700 000 0002",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = a.do(http.MethodPost, o.path("/clients/confirm"), "", map[string]string{
		"phone_number": "+447000000002", "pin": "1234",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = a.do(http.MethodGet, o.path("/customers/by-phone/+447000000002"), o.token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"confirmed":true`)

	status, _ = a.do(http.MethodPost, "/api/v1/companies/999/clients/register", "", map[string]string{
		"phone_number": "+447000000003",
	})
	assert.Equal(t, http.StatusNotFound, status, "unknown company")

	status, _ = a.do(http.MethodGet, o.path("/customers"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "customer list stays private")
}
