package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tixload/cli/internal/config"
	apperr "tixload/cli/internal/errors"
)

// SDKPath is the single route every storefront operation is posted to.
const SDKPath = "/sdk/request"

// Envelope is the JSON wrapper sent to SDKPath. The meaning of Body is
// determined by RequestType and validated only by the server.
type Envelope struct {
	RequestType string `json:"requestType"`
	Body        any    `json:"body"`
}

// HTTP implements Storefront over the SDK endpoint.
type HTTP struct {
	// endpoint is BaseURL + SDKPath
	endpoint string
	// headers identify the application, channel and business on every call
	appID, appChannel, appBusiness string
	// client is shared with the seat-map client of the same run
	client *http.Client
}

// newHTTP creates a storefront client for cfg. A nil client gets a fresh one
// with the configured timeout.
func newHTTP(cfg config.Config, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout.Duration}
	}
	return &HTTP{
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + SDKPath,
		appID:       cfg.AppID,
		appChannel:  cfg.AppChannel,
		appBusiness: cfg.AppBusiness,
		client:      client,
	}
}

// setStandardHeaders applies the headers the SDK endpoint requires.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Application-id", h.appID)
	req.Header.Set("Application-Channel", h.appChannel)
	req.Header.Set("Application-Business", h.appBusiness)
}

// Do posts {requestType, body} and returns whatever status the server sent.
// Only failures to obtain a response are returned as errors.
func (h *HTTP) Do(ctx context.Context, requestType string, body any) (Response, error) {
	b, err := json.Marshal(Envelope{RequestType: requestType, Body: body})
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Decode, "encode "+requestType, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(b))
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Transport, "build "+requestType, err)
	}
	h.setStandardHeaders(req)
	return send(h.client, req, requestType)
}

// send executes req, reads the whole body and measures the round trip.
func send(client *http.Client, req *http.Request, label string) (Response, error) {
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return Response{Duration: time.Since(start)}, apperr.Wrap(apperr.Transport, label, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	out := Response{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     body,
		Duration: time.Since(start),
	}
	if err != nil {
		return out, apperr.Wrap(apperr.Transport, fmt.Sprintf("%s: read body", label), err)
	}
	return out, nil
}
