package backend

import (
	"context"

	"tixload/cli/internal/payload"
)

// Request types understood by the SDK endpoint.
const (
	RequestSeatsIoWorkspace                = "SeatsIoWorkspace"
	RequestCreateSeatedShoppingCart        = "CreateSeatedShoppingCart"
	RequestAgreeUserPurchase               = "AgreeUserPurchase"
	RequestFillPurchaserInformation        = "FillPurchaserInformation"
	RequestGetCart                         = "GetCart"
	RequestPaymentProcessorRequest         = "PaymentProcessorRequest"
	RequestStartPayment                    = "StartPayment"
	RequestGetCartInfo                     = "GetCartInfo"
	RequestGetPurchaseCodesFromOrderNumber = "GetPurchaseCodesFromOrderNumber"
)

// SeatsIoWorkspace asks for the seat-map workspace id; the body is null.
func (h *HTTP) SeatsIoWorkspace(ctx context.Context) (Response, error) {
	return h.Do(ctx, RequestSeatsIoWorkspace, nil)
}

// CreateSeatedShoppingCart creates a cart holding the given seats.
func (h *HTTP) CreateSeatedShoppingCart(ctx context.Context, cart payload.Cart) (Response, error) {
	return h.Do(ctx, RequestCreateSeatedShoppingCart, cart)
}

// AgreeUserPurchase accepts the purchase terms; the body is the bare cart id.
func (h *HTTP) AgreeUserPurchase(ctx context.Context, cartID string) (Response, error) {
	return h.Do(ctx, RequestAgreeUserPurchase, cartID)
}

// FillPurchaserInformation attaches buyer details to the cart.
func (h *HTTP) FillPurchaserInformation(ctx context.Context, cartID string, info payload.Purchaser) (Response, error) {
	return h.Do(ctx, RequestFillPurchaserInformation, payload.PurchaserRequest{
		ShoppingCartID:       cartID,
		PurchaserInformation: info,
	})
}

// GetCart fetches the cart, optionally populating references.
func (h *HTTP) GetCart(ctx context.Context, cartID string, populate any) (Response, error) {
	return h.Do(ctx, RequestGetCart, payload.CartQuery{ShoppingCartID: cartID, Populate: populate})
}

// PaymentProcessorRequest forwards a processor-specific request such as
// "setup" or "confirmPayment".
func (h *HTTP) PaymentProcessorRequest(ctx context.Context, processorID, requestType string, body any) (Response, error) {
	return h.Do(ctx, RequestPaymentProcessorRequest, payload.ProcessorRequest{
		PaymentProcessorID: processorID,
		RequestType:        requestType,
		Body:               body,
	})
}

// StartPayment moves the cart into payment; the body is the bare cart id.
func (h *HTTP) StartPayment(ctx context.Context, cartID string) (Response, error) {
	return h.Do(ctx, RequestStartPayment, cartID)
}

// GetCartInfo returns cart metadata including the order number once paid.
func (h *HTTP) GetCartInfo(ctx context.Context, cartID string, includeCart bool) (Response, error) {
	return h.Do(ctx, RequestGetCartInfo, payload.CartInfoQuery{ShoppingCartID: cartID, IncludeCart: includeCart})
}

// GetPurchaseCodesFromOrderNumber lists the admission codes of an order.
func (h *HTTP) GetPurchaseCodesFromOrderNumber(ctx context.Context, orderNumber string) (Response, error) {
	return h.Do(ctx, RequestGetPurchaseCodesFromOrderNumber, orderNumber)
}
