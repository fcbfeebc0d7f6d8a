// Package wallet talks to the digital wallet card provider: pass issue and
// update, card SMS, push messages, templates and phone activation pins.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"
)

// Config holds wallet provider credentials and endpoint
type Config struct {
	BaseURL   string
	APIID     string
	APIKey    string
	SMSSender string
	Timeout   time.Duration
}

// Client is the wallet provider HTTP client. Safe for concurrent use.
type Client struct {
	config Config
	http   *http.Client

	mu    sync.Mutex
	token string
}

type tokenResponse struct {
	Token string `json:"token"`
}

// NewClient creates a wallet provider client
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.SMSSender == "" {
		cfg.SMSSender = "OSMICARDS"
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

// GetToken returns the cached bearer token, fetching one when none is held
func (c *Client) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	body := map[string]string{"apiId": c.config.APIID, "apiKey": c.config.APIKey}
	var resp tokenResponse
	if err := c.send(ctx, http.MethodPost, "/getToken", nil, body, &resp, ""); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("wallet token: empty token: %w", domain.ErrExternalService)
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return resp.Token, nil
}

// CreateOrUpdateCard issues a pass when create is set, otherwise updates it and
// asks the provider to push the change to the holder's device
func (c *Client) CreateOrUpdateCard(ctx context.Context, serial int64, templateKey string, card cards.Card, create bool) error {
	path := "/passes/" + strconv.FormatInt(serial, 10) + "/" + url.PathEscape(templateKey)
	if create {
		return c.do(ctx, http.MethodPost, path, url.Values{"withValues": {"true"}}, card, nil)
	}
	return c.do(ctx, http.MethodPut, path, url.Values{"push": {"true"}}, card, nil)
}

// SendSms texts the card download link to phone. message may contain the {link} placeholder.
func (c *Client) SendSms(ctx context.Context, serial int64, phone, message string) error {
	path := "/passes/" + strconv.FormatInt(serial, 10) + "/sms/" + url.PathEscape(phone)
	q := url.Values{"message": {message}, "sender": {c.config.SMSSender}}
	return c.do(ctx, http.MethodGet, path, q, nil, nil)
}

// PushUpdate asks the provider to refresh the pass on the holder's device
func (c *Client) PushUpdate(ctx context.Context, serial int64) error {
	path := "/passes/" + strconv.FormatInt(serial, 10) + "/push"
	return c.do(ctx, http.MethodGet, path, nil, nil, nil)
}

// SendPushMessage sends a marketing notification to the given passes
func (c *Client) SendPushMessage(ctx context.Context, message string, serials []int64) error {
	return c.do(ctx, http.MethodPost, "/marketing/pushmessage", nil, cards.Push{Message: message, Serials: serials}, nil)
}

// UpdateTemplate replaces a card template
func (c *Client) UpdateTemplate(ctx context.Context, templateKey string, tpl cards.Template) error {
	path := "/templates/" + url.PathEscape(templateKey)
	return c.do(ctx, http.MethodPost, path, url.Values{"edit": {"true"}}, tpl, nil)
}

// SendPin texts a one-time pin to phone and returns the activation token to check it with
func (c *Client) SendPin(ctx context.Context, phone, smsText string, length int) (string, error) {
	body := map[string]string{"smsText": smsText, "length": strconv.Itoa(length)}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/activation/sendpin/"+url.PathEscape(phone), nil, body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("send pin: empty activation token: %w", domain.ErrExternalService)
	}
	return resp.Token, nil
}

// CheckPin reports whether pin matches the activation token.
// A client error from the provider means a wrong pin, not an outage.
func (c *Client) CheckPin(ctx context.Context, token, pin string) (bool, error) {
	body := map[string]string{"token": token, "pin": pin}
	err := c.do(ctx, http.MethodPost, "/activation/checkpin", nil, body, nil)
	if err == nil {
		return true, nil
	}
	if se, ok := err.(*StatusError); ok && se.Code >= 400 && se.Code < 500 && se.Code != http.StatusUnauthorized {
		return false, nil
	}
	return false, err
}

// do sends an authorized request, refreshing the token once on 401
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	token, err := c.GetToken(ctx)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, query, body, out, token)
	if se, ok := err.(*StatusError); ok && se.Code == http.StatusUnauthorized {
		c.mu.Lock()
		if c.token == token {
			c.token = ""
		}
		c.mu.Unlock()

		if token, err = c.GetToken(ctx); err != nil {
			return err
		}
		err = c.send(ctx, method, path, query, body, out, token)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out interface{}, token string) error {
	target := c.config.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrExternalService)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %v: %w", method, path, err, domain.ErrExternalService)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s %s: %v: %w", method, path, err, domain.ErrExternalService)
		}
	}
	return nil
}

// StatusError is a non-2xx reply from the provider
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wallet %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap lets errors.Is match domain.ErrExternalService
func (e *StatusError) Unwrap() error {
	return domain.ErrExternalService
}
