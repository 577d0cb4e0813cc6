// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"

	"tixload/cli/internal/config"
)

// New creates the storefront SDK client for cfg.
func New(cfg config.Config, client *http.Client) Storefront {
	return newHTTP(cfg, client)
}

// NewSeatMap creates the seat-map provider client for cfg.
func NewSeatMap(cfg config.Config, client *http.Client) SeatMap {
	return newSeatMapHTTP(cfg, client)
}

// NewHTTPClient returns the client shared by both collaborators of one run.
// Keep-alive pools are sized for many concurrent virtual users.
func NewHTTPClient(cfg config.Config) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConns = 512
	tr.MaxIdleConnsPerHost = 256
	return &http.Client{Timeout: cfg.HTTPTimeout.Duration, Transport: tr}
}
