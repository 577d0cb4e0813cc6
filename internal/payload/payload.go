// Package payload builds the request bodies of the checkout flow. The shapes
// mirror what the storefront SDK and the seat-map provider expect on the wire;
// field names are part of the remote contract.
package payload

import (
	"fmt"
	"math/rand/v2"

	"tixload/cli/internal/config"

	"github.com/google/uuid"
)

// Category identifies the price zone of a seat.
type Category struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// Seat is one entry of a seated cart.
type Seat struct {
	Label              string   `json:"label"`
	DisplayLabel       string   `json:"displayLabel"`
	HoldToken          string   `json:"holdToken"`
	SelectedTicketType string   `json:"selectedTicketType"`
	ObjectType         string   `json:"objectType"`
	Category           Category `json:"category"`
}

// ApplicationParameters scopes a request to a sales channel and business.
type ApplicationParameters struct {
	Channel  string `json:"channel"`
	Business string `json:"business"`
}

// Cart is the CreateSeatedShoppingCart body.
type Cart struct {
	Event                 string                `json:"event"`
	Seats                 []Seat                `json:"seats"`
	ApplicationParameters ApplicationParameters `json:"applicationParameters"`
}

// Purchaser is the buyer record attached by FillPurchaserInformation.
type Purchaser struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	Zone       string `json:"zone"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PurchaserRequest is the FillPurchaserInformation body.
type PurchaserRequest struct {
	ShoppingCartID       string    `json:"shoppingCartId"`
	PurchaserInformation Purchaser `json:"purchaserInformation"`
}

// CartQuery is the GetCart body. Populate is either a single path string or
// a []PopulatePath tree.
type CartQuery struct {
	ShoppingCartID string `json:"shoppingCartId"`
	Populate       any    `json:"populate,omitempty"`
}

// CartInfoQuery is the GetCartInfo body.
type CartInfoQuery struct {
	ShoppingCartID string `json:"shoppingCartId"`
	IncludeCart    bool   `json:"includeCart"`
}

// ProcessorRequest is the PaymentProcessorRequest body.
type ProcessorRequest struct {
	PaymentProcessorID string `json:"paymentProcessorId"`
	RequestType        string `json:"requestType"`
	Body               any    `json:"body"`
}

// HoldObject names one seat-map object to hold.
type HoldObject struct {
	ObjectID   string `json:"objectId"`
	TicketType string `json:"ticketType"`
}

// HoldRequest is the seat-map hold body.
type HoldRequest struct {
	HoldToken string       `json:"holdToken"`
	Objects   []HoldObject `json:"objects"`
}

// AppParams returns the application parameters of cfg.
func AppParams(cfg config.Config) ApplicationParameters {
	return ApplicationParameters{Channel: cfg.AppChannel, Business: cfg.AppBusiness}
}

// NewSeat builds the configured seat under holdToken.
func NewSeat(seat config.SeatConfig, holdToken string) Seat {
	return Seat{
		Label:              seat.ObjectID,
		DisplayLabel:       seat.ObjectID,
		HoldToken:          holdToken,
		SelectedTicketType: seat.TicketType,
		ObjectType:         seat.ObjectType,
		Category:           Category{Label: seat.CategoryLabel, Key: seat.CategoryKey},
	}
}

// NewCart builds a cart for the configured event with the given seats.
func NewCart(cfg config.Config, seats ...Seat) Cart {
	return Cart{Event: cfg.EventID, Seats: seats, ApplicationParameters: AppParams(cfg)}
}

// HoldObjects returns the seat-map objects for the configured seat.
func HoldObjects(seat config.SeatConfig) []HoldObject {
	return []HoldObject{{ObjectID: seat.ObjectID, TicketType: seat.TicketType}}
}

// SyntheticSeat labels a seat by virtual user and iteration. The hold token is
// fabricated, so carts built from it exercise the API without a real hold.
func SyntheticSeat(seat config.SeatConfig, vu, iter int) Seat {
	s := NewSeat(seat, fmt.Sprintf("stress-test-%d-%d", vu, iter))
	s.Label = fmt.Sprintf("%d-%d", vu, iter)
	s.DisplayLabel = fmt.Sprintf("User%d-Iter%d", vu, iter)
	return s
}

// UniqueEmail returns an address no other flow will use.
func UniqueEmail() string {
	return "loadtest." + uuid.NewString() + "@example.com"
}

// LoadTestPurchaser is the fixed buyer of the purchase scenario with a fresh email.
func LoadTestPurchaser() Purchaser {
	return Purchaser{
		Email:      UniqueEmail(),
		FirstName:  "Load",
		LastName:   "Test",
		Address1:   "Test Street 123",
		Phone:      "+1234567890",
		City:       "Test City",
		Zone:       "TH-10",
		PostalCode: "10000",
		Country:    "US",
	}
}

// GeneratedPurchaser derives a buyer from the virtual user and iteration with
// randomized street, phone and postal code.
func GeneratedPurchaser(vu, iter int, rnd *rand.Rand) Purchaser {
	return Purchaser{
		Email:      fmt.Sprintf("loadtest.%d.%d@example.com", vu, iter),
		FirstName:  fmt.Sprintf("LoadTest%d", vu),
		LastName:   fmt.Sprintf("User%d", iter),
		Address1:   fmt.Sprintf("Test Street %d", between(rnd, 1, 999)),
		Phone:      fmt.Sprintf("+1%d", between(rnd, 1000000000, 9999999999)),
		City:       "Test City",
		Zone:       "TH-10",
		PostalCode: fmt.Sprintf("%d", between(rnd, 10000, 99999)),
		Country:    "US",
	}
}

// between returns an int in [lo, hi].
func between(rnd *rand.Rand, lo, hi int) int {
	return lo + rnd.IntN(hi-lo+1)
}
