package wallet_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"loyalwallet/internal/adapters/wallet"
	"loyalwallet/internal/core/cards"
	"loyalwallet/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type provider struct {
	tokens  int32
	token   string
	handler http.HandlerFunc
}

func newProvider(t *testing.T, handler http.HandlerFunc) (*provider, *wallet.Client) {
	t.Helper()
	p := &provider{token: "tok-1", handler: handler}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/getToken" {
			n := atomic.AddInt32(&p.tokens, 1)
			var creds map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "api-id", creds["apiId"])
			assert.Equal(t, "api-key", creds["apiKey"])
			if n > 1 {
				p.token = "tok-2"
			}
			json.NewEncoder(w).Encode(map[string]string{"token": p.token})
			return
		}
		p.handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return p, wallet.NewClient(wallet.Config{
		BaseURL: srv.URL,
		APIID:   "api-id",
		APIKey:  "api-key",
		Timeout: time.Second,
	})
}

func TestCreateCard(t *testing.T) {
	var got cards.Card
	_, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/passes/77/company-3", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("withValues"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	card := cards.Card{Values: []domain.CardField{{Key: cards.KeyStamps, Value: "1 / 6"}}}
	err := client.CreateOrUpdateCard(context.Background(), 77, "company-3", card, true)

	require.NoError(t, err)
	require.Len(t, got.Values, 1)
	assert.Equal(t, "1 / 6", got.Values[0].Value)
}

func TestUpdateCardPushes(t *testing.T) {
	_, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("push"))
	})

	require.NoError(t, client.CreateOrUpdateCard(context.Background(), 77, "company-3", cards.Card{}, false))
}

func TestTokenIsCached(t *testing.T) {
	p, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, client.PushUpdate(context.Background(), 1))
	require.NoError(t, client.PushUpdate(context.Background(), 2))

	assert.Equal(t, int32(1), atomic.LoadInt32(&p.tokens))
}

func TestReauthenticatesOnUnauthorized(t *testing.T) {
	p, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	err := client.SendPushMessage(context.Background(), "hello", []int64{1, 2})

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.tokens))
}

func TestServerErrorIsExternalServiceError(t *testing.T) {
	_, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	err := client.SendSms(context.Background(), 5, "+100", cards.CardReadyMessage)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExternalService))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestSendSmsQuery(t *testing.T) {
	_, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/passes/5/sms/+100", r.URL.Path)
		assert.Equal(t, cards.CardReadyMessage, r.URL.Query().Get("message"))
		assert.Equal(t, "OSMICARDS", r.URL.Query().Get("sender"))
	})

	require.NoError(t, client.SendSms(context.Background(), 5, "+100", cards.CardReadyMessage))
}

func TestSendAndCheckPin(t *testing.T) {
	_, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/activation/sendpin/+100":
			assert.Equal(t, "4", body["length"])
			json.NewEncoder(w).Encode(map[string]string{"token": "act-9"})
		case "/activation/checkpin":
			assert.Equal(t, "act-9", body["token"])
			if body["pin"] != "1234" {
				w.WriteHeader(http.StatusBadRequest)
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	token, err := client.SendPin(ctx, "+100", cards.PinMessage, cards.PinLength)
	require.NoError(t, err)
	assert.Equal(t, "act-9", token)

	ok, err := client.CheckPin(ctx, token, "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.CheckPin(ctx, token, "0000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTimeout(t *testing.T) {
	_, client := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
	})

	err := client.PushUpdate(context.Background(), 1)

	assert.ErrorIs(t, err, domain.ErrExternalService)
}
