// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides clients for the two remote collaborators of a checkout
// flow: the storefront SDK endpoint, which multiplexes every checkout operation
// over one POST route keyed by requestType, and the seat-map provider that issues
// hold tokens and holds seats.
//
// Clients never retry and never interpret status codes; they return the raw
// Response and leave gating decisions to the caller.
package backend

import (
	"context"

	"tixload/cli/internal/payload"
)

// Storefront defines the SDK operations a checkout flow depends on.
// Implementations may call the real endpoint or provide fakes for tests.
type Storefront interface {
	// Do sends an arbitrary {requestType, body} envelope.
	Do(ctx context.Context, requestType string, body any) (Response, error)

	SeatsIoWorkspace(ctx context.Context) (Response, error)
	CreateSeatedShoppingCart(ctx context.Context, cart payload.Cart) (Response, error)
	AgreeUserPurchase(ctx context.Context, cartID string) (Response, error)
	FillPurchaserInformation(ctx context.Context, cartID string, info payload.Purchaser) (Response, error)
	// GetCart fetches a cart; populate is omitted from the request when nil.
	GetCart(ctx context.Context, cartID string, populate any) (Response, error)
	PaymentProcessorRequest(ctx context.Context, processorID, requestType string, body any) (Response, error)
	StartPayment(ctx context.Context, cartID string) (Response, error)
	GetCartInfo(ctx context.Context, cartID string, includeCart bool) (Response, error)
	GetPurchaseCodesFromOrderNumber(ctx context.Context, orderNumber string) (Response, error)
}

// SeatMap defines the seat-map provider operations used before cart creation.
type SeatMap interface {
	CreateHoldToken(ctx context.Context) (Response, error)
	HoldSeat(ctx context.Context, eventID, holdToken string, objects []payload.HoldObject) (Response, error)
}
