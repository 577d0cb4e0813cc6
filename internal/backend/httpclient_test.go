// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tixload/cli/internal/config"
	apperr "tixload/cli/internal/errors"
	"tixload/cli/internal/payload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func captureServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.EscapedPath()
		c.header = r.Header.Clone()
		c.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func testConfig(baseURL string) config.Config {
	cfg := config.Defaults()
	cfg.BaseURL = baseURL
	cfg.SeatsIOURL = baseURL
	cfg.SeatsIOKey = "c2VjcmV0Og=="
	cfg.HTTPTimeout = config.Duration{Duration: 2 * time.Second}
	return cfg
}

func TestDoSendsEnvelopeAndHeaders(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, "  ws-123\n")
	cfg := testConfig(srv.URL + "/")

	resp, err := New(cfg, nil).SeatsIoWorkspace(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, SDKPath, got.path)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, cfg.AppID, got.header.Get("Application-id"))
	assert.Equal(t, "StoreFront", got.header.Get("Application-Channel"))
	assert.Equal(t, "Seated", got.header.Get("Application-Business"))
	assert.JSONEq(t, `{"requestType":"SeatsIoWorkspace","body":null}`, string(got.body))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "  ws-123\n", string(resp.Body))
}

func TestDoReturnsErrorStatusWithoutError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError, `{"message":"boom"}`)

	resp, err := New(testConfig(srv.URL), nil).AgreeUserPurchase(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.False(t, resp.StatusIn(http.StatusOK))
}

func TestTypedRequestBodies(t *testing.T) {
	tests := []struct {
		name string
		call func(Storefront) (Response, error)
		want string
	}{
		{
			name: "agree sends bare cart id",
			call: func(s Storefront) (Response, error) { return s.AgreeUserPurchase(context.Background(), "cart-1") },
			want: `{"requestType":"AgreeUserPurchase","body":"cart-1"}`,
		},
		{
			name: "get cart with event populate",
			call: func(s Storefront) (Response, error) {
				return s.GetCart(context.Background(), "cart-1", payload.PopulateEvent)
			},
			want: `{"requestType":"GetCart","body":{"shoppingCartId":"cart-1","populate":"event"}}`,
		},
		{
			name: "cart info",
			call: func(s Storefront) (Response, error) { return s.GetCartInfo(context.Background(), "cart-1", false) },
			want: `{"requestType":"GetCartInfo","body":{"shoppingCartId":"cart-1","includeCart":false}}`,
		},
		{
			name: "processor setup",
			call: func(s Storefront) (Response, error) {
				return s.PaymentProcessorRequest(context.Background(), "proc-1", payload.ProcessorSetup,
					payload.PaymentSetup{PaymentProcessorID: "proc-1", EventID: "evt-1"})
			},
			want: `{"requestType":"PaymentProcessorRequest","body":{"paymentProcessorId":"proc-1","requestType":"setup","body":{"paymentProcessorId":"proc-1","eventId":"evt-1"}}}`,
		},
		{
			name: "purchase codes",
			call: func(s Storefront) (Response, error) {
				return s.GetPurchaseCodesFromOrderNumber(context.Background(), "ORD-9")
			},
			want: `{"requestType":"GetPurchaseCodesFromOrderNumber","body":"ORD-9"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := captureServer(t, http.StatusOK, "")
			_, err := tt.call(New(testConfig(srv.URL), nil))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got.body))
		})
	}
}

func TestTransportErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(testConfig(url), nil).StartPayment(context.Background(), "cart-1")
	require.Error(t, err)
	assert.Equal(t, apperr.Transport, apperr.KindOf(err))
}

func TestSeatMapRequests(t *testing.T) {
	srv, got := captureServer(t, http.StatusCreated, `{"holdToken":"pWA93eh3nJ"}`)
	sm := NewSeatMap(testConfig(srv.URL), nil)

	resp, err := sm.CreateHoldToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/hold-tokens", got.path)
	assert.Equal(t, "Basic c2VjcmV0Og==", got.header.Get("Authorization"))
	assert.Empty(t, got.body)

	token, err := DecodeHoldToken(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pWA93eh3nJ", token)

	_, err = sm.HoldSeat(context.Background(), "evt 1", token, payload.HoldObjects(config.Defaults().Seat))
	require.NoError(t, err)
	assert.Equal(t, "/events/evt%201/actions/hold", got.path)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "pWA93eh3nJ", body["holdToken"])
	assert.JSONEq(t, `{"holdToken":"pWA93eh3nJ","objects":[{"objectId":"107 V","ticketType":"68481b94861e9c995183b3ed"}]}`, string(got.body))
}

func TestResponseSnippet(t *testing.T) {
	r := Response{Body: []byte("abcdef")}
	assert.Equal(t, "abc", r.Snippet(3))
	assert.Equal(t, "abcdef", r.Snippet(10))
}
