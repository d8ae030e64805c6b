package services

import (
	"context"

	apperrors "pcstore/errors"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

// GatewayPayment is the result of creating a payment at the gateway:
// the provider's transaction id and the link the buyer must visit to
// approve it.
type GatewayPayment struct {
	TransactionID string
	ApprovalLink  string
}

// GatewayCapture is the result of capturing an approved payment.
type GatewayCapture struct {
	CaptureID  string
	PayerID    string
	PayerEmail string
	Status     string
}

// PaymentGateway abstracts the payment provider so the order service
// can be tested without network calls.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*GatewayPayment, error)
	ExecutePayment(ctx context.Context, transactionID string) (*GatewayCapture, error)
	RefundPayment(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (string, error)
}

// PaypalGateway implements PaymentGateway on the PayPal Orders v2 API.
type PaypalGateway struct {
	client    *paypal.Client
	returnURL string
	cancelURL string
}

// NewPaypalGateway creates a new instance of PaypalGateway
func NewPaypalGateway(clientID, secret, apiBase, returnURL, cancelURL string) (*PaypalGateway, error) {
	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, err
	}
	return &PaypalGateway{
		client:    client,
		returnURL: returnURL,
		cancelURL: cancelURL,
	}, nil
}

// CreatePayment opens a capture-intent order at PayPal. Amounts go out
// as fixed two-decimal strings so no float rounding ever reaches the
// provider.
func (g *PaypalGateway) CreatePayment(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*GatewayPayment, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: orderID,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    amount.StringFixed(2),
			},
		},
	}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: g.returnURL,
		CancelURL: g.cancelURL,
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return nil, apperrors.ExternalService("failed to create PayPal order", err)
	}

	payment := &GatewayPayment{TransactionID: order.ID}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			payment.ApprovalLink = link.Href
			break
		}
	}
	return payment, nil
}

// ExecutePayment captures the approved PayPal order.
func (g *PaypalGateway) ExecutePayment(ctx context.Context, transactionID string) (*GatewayCapture, error) {
	resp, err := g.client.CaptureOrder(ctx, transactionID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, apperrors.ExternalService("failed to capture PayPal order", err)
	}
	if resp.Status != "COMPLETED" {
		return nil, apperrors.ExternalService("PayPal capture was not completed: "+resp.Status, nil)
	}

	capture := &GatewayCapture{Status: resp.Status}
	if resp.Payer != nil {
		capture.PayerID = resp.Payer.PayerID
		capture.PayerEmail = resp.Payer.EmailAddress
	}
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			capture.CaptureID = unit.Payments.Captures[0].ID
			break
		}
	}
	return capture, nil
}

// RefundPayment refunds the captured amount and returns the provider
// refund id.
func (g *PaypalGateway) RefundPayment(ctx context.Context, captureID string, amount decimal.Decimal, currency string) (string, error) {
	resp, err := g.client.RefundCapture(ctx, captureID, paypal.RefundCaptureRequest{
		Amount: &paypal.Money{
			Currency: currency,
			Value:    amount.StringFixed(2),
		},
	})
	if err != nil {
		return "", apperrors.ExternalService("failed to refund PayPal capture", err)
	}
	return resp.ID, nil
}
