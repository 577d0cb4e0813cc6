package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"tixload/cli/internal/backend"
	"tixload/cli/internal/payload"
)

type call struct {
	name string
	body any
}

// fakeAPI implements both collaborators. Replies are keyed by call name; a
// name without a reply answers 200 with an empty body.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []call
	replies map[string]backend.Response
	errs    map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{replies: map[string]backend.Response{}, errs: map[string]error{}}
}

// happyAPI answers every request the way a healthy backend would.
func happyAPI() *fakeAPI {
	f := newFakeAPI()
	f.reply("CreateHoldToken", http.StatusCreated, `{"holdToken":"pWA93eh3nJ"}`)
	f.reply("HoldSeat", http.StatusNoContent, "")
	f.reply("SeatsIoWorkspace", http.StatusOK, "ws-1")
	f.reply("CreateSeatedShoppingCart", http.StatusOK, `"cart-1"`)
	f.reply("GetCart", http.StatusOK, `{"event":{"payment":{"paymentProcessor":"proc-123"},"_id":"evt-1"}}`)
	f.reply("GetCartInfo", http.StatusOK, `{"orderNumber":"ORD-1"}`)
	f.reply("GetPurchaseCodesFromOrderNumber", http.StatusOK, `{"data":[{"originalCode":"QR-ABC"}]}`)
	return f
}

func (f *fakeAPI) reply(name string, status int, body string) {
	f.replies[name] = backend.Response{Status: status, Body: []byte(body)}
}

func (f *fakeAPI) record(name string, body any) (backend.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, body: body})
	if err := f.errs[name]; err != nil {
		return backend.Response{}, err
	}
	if r, ok := f.replies[name]; ok {
		return r, nil
	}
	return backend.Response{Status: http.StatusOK}, nil
}

func (f *fakeAPI) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.name)
	}
	return out
}

func (f *fakeAPI) bodyOf(name string, nth int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := 0
	for _, c := range f.calls {
		if c.name != name {
			continue
		}
		if seen == nth {
			b, _ := json.Marshal(c.body)
			return b
		}
		seen++
	}
	return nil
}

func (f *fakeAPI) CreateHoldToken(context.Context) (backend.Response, error) {
	return f.record("CreateHoldToken", nil)
}

func (f *fakeAPI) HoldSeat(_ context.Context, eventID, holdToken string, objects []payload.HoldObject) (backend.Response, error) {
	return f.record("HoldSeat", payload.HoldRequest{HoldToken: holdToken, Objects: objects})
}

func (f *fakeAPI) Do(_ context.Context, requestType string, body any) (backend.Response, error) {
	return f.record(requestType, body)
}

func (f *fakeAPI) SeatsIoWorkspace(ctx context.Context) (backend.Response, error) {
	return f.Do(ctx, backend.RequestSeatsIoWorkspace, nil)
}

func (f *fakeAPI) CreateSeatedShoppingCart(ctx context.Context, cart payload.Cart) (backend.Response, error) {
	return f.Do(ctx, backend.RequestCreateSeatedShoppingCart, cart)
}

func (f *fakeAPI) AgreeUserPurchase(ctx context.Context, cartID string) (backend.Response, error) {
	return f.Do(ctx, backend.RequestAgreeUserPurchase, cartID)
}

func (f *fakeAPI) FillPurchaserInformation(ctx context.Context, cartID string, info payload.Purchaser) (backend.Response, error) {
	return f.Do(ctx, backend.RequestFillPurchaserInformation, payload.PurchaserRequest{ShoppingCartID: cartID, PurchaserInformation: info})
}

func (f *fakeAPI) GetCart(ctx context.Context, cartID string, populate any) (backend.Response, error) {
	return f.Do(ctx, backend.RequestGetCart, payload.CartQuery{ShoppingCartID: cartID, Populate: populate})
}

func (f *fakeAPI) PaymentProcessorRequest(ctx context.Context, processorID, requestType string, body any) (backend.Response, error) {
	return f.Do(ctx, backend.RequestPaymentProcessorRequest, payload.ProcessorRequest{PaymentProcessorID: processorID, RequestType: requestType, Body: body})
}

func (f *fakeAPI) StartPayment(ctx context.Context, cartID string) (backend.Response, error) {
	return f.Do(ctx, backend.RequestStartPayment, cartID)
}

func (f *fakeAPI) GetCartInfo(ctx context.Context, cartID string, includeCart bool) (backend.Response, error) {
	return f.Do(ctx, backend.RequestGetCartInfo, payload.CartInfoQuery{ShoppingCartID: cartID, IncludeCart: includeCart})
}

func (f *fakeAPI) GetPurchaseCodesFromOrderNumber(ctx context.Context, orderNumber string) (backend.Response, error) {
	return f.Do(ctx, backend.RequestGetPurchaseCodesFromOrderNumber, orderNumber)
}
