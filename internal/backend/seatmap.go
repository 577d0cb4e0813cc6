package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"tixload/cli/internal/config"
	apperr "tixload/cli/internal/errors"
	"tixload/cli/internal/payload"
)

// SeatMapHTTP implements SeatMap against a seats.io-compatible API.
type SeatMapHTTP struct {
	baseURL string
	// apiKey is already base64 encoded and sent as "Basic <apiKey>"
	apiKey string
	client *http.Client
}

func newSeatMapHTTP(cfg config.Config, client *http.Client) *SeatMapHTTP {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout.Duration}
	}
	return &SeatMapHTTP{
		baseURL: strings.TrimRight(cfg.SeatsIOURL, "/"),
		apiKey:  cfg.SeatsIOKey,
		client:  client,
	}
}

// CreateHoldToken calls POST /hold-tokens with an empty body.
// Success is 200 or 201 with {"holdToken": "..."}.
func (s *SeatMapHTTP) CreateHoldToken(ctx context.Context) (Response, error) {
	return s.post(ctx, "/hold-tokens", nil, "create hold token")
}

// HoldSeat calls POST /events/{eventID}/actions/hold. Success is 204.
func (s *SeatMapHTTP) HoldSeat(ctx context.Context, eventID, holdToken string, objects []payload.HoldObject) (Response, error) {
	body := payload.HoldRequest{HoldToken: holdToken, Objects: objects}
	return s.post(ctx, "/events/"+url.PathEscape(eventID)+"/actions/hold", body, "hold seat")
}

func (s *SeatMapHTTP) post(ctx context.Context, path string, body any, label string) (Response, error) {
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Response{}, apperr.Wrap(apperr.Decode, "encode "+label, err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, rdr)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.Transport, "build "+label, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+s.apiKey)
	return send(s.client, req, label)
}
