package payload

import "tixload/cli/internal/config"

// Populate paths for GetCart.
const PopulateEvent = "event"

// PopulatePath is one node of a nested populate specification.
type PopulatePath struct {
	Path     string         `json:"path"`
	Populate []PopulatePath `json:"populate,omitempty"`
}

// FullCartPopulate expands every reference the checkout page renders.
func FullCartPopulate() []PopulatePath {
	return []PopulatePath{
		{Path: "items.ticket"},
		{Path: "items.addOn"},
		{Path: "event", Populate: []PopulatePath{{Path: "venue"}}},
		{Path: "taxes"},
		{Path: "fees"},
		{Path: "customer"},
		{Path: "promoCodes"},
		{Path: "purchaserAnswers.question"},
	}
}

// Payment processor request types.
const (
	ProcessorSetup          = "setup"
	ProcessorConfirmPayment = "confirmPayment"
)

// PaymentSetup is the body of the "setup" processor request.
type PaymentSetup struct {
	PaymentProcessorID string `json:"paymentProcessorId"`
	EventID            string `json:"eventId"`
}

// Billing holds the billing fields a card token carries.
type Billing struct {
	PostalCode string `json:"postalCode"`
}

// Card describes the tokenized card.
type Card struct {
	Brand    string `json:"brand"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	Last4    string `json:"last4"`
}

// TokenDetails accompanies a card token.
type TokenDetails struct {
	Billing Billing `json:"billing"`
	Card    Card    `json:"card"`
	Method  string  `json:"method"`
}

// TokenResult is the tokenized payment method handed to confirmPayment.
type TokenResult struct {
	Token   string       `json:"token"`
	Details TokenDetails `json:"details"`
}

// ConfirmPayment is the body of the "confirmPayment" processor request.
type ConfirmPayment struct {
	ShoppingCartID            string                `json:"shoppingCartId"`
	Method                    string                `json:"method"`
	ApplicationParameters     ApplicationParameters `json:"applicationParameters"`
	TokenResult               TokenResult           `json:"tokenResult"`
	SquareItemizationSettings []any                 `json:"squareItemizationSettings"`
}

// TestCardToken is the sandbox nonce the payment processor always approves.
func TestCardToken() TokenResult {
	return TokenResult{
		Token: "cnon:card-nonce-ok",
		Details: TokenDetails{
			Billing: Billing{PostalCode: "11111"},
			Card:    Card{Brand: "VISA", ExpMonth: 11, ExpYear: 2027, Last4: "1111"},
			Method:  "Card",
		},
	}
}

// NewConfirmPayment pays cartID with the sandbox card.
func NewConfirmPayment(cfg config.Config, cartID string) ConfirmPayment {
	return ConfirmPayment{
		ShoppingCartID:            cartID,
		Method:                    "Card",
		ApplicationParameters:     AppParams(cfg),
		TokenResult:               TestCardToken(),
		SquareItemizationSettings: []any{},
	}
}
