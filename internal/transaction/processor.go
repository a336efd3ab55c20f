package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// MetadataTransactionKey links a payment intent back to its transaction.
const MetadataTransactionKey = "transaction"

type IntentRequest struct {
	TransactionID int64
	AmountMinor   int64
	Currency      string
	Description   string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// Processor creates payment intents with the external payment provider.
type Processor interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error)
}

type StripeProcessor struct {
	api    *client.API
	logger *slog.Logger
}

func NewStripeProcessor(secretKey string, logger *slog.Logger) *StripeProcessor {
	return &StripeProcessor{
		api:    client.New(secretKey, nil),
		logger: logger,
	}
}

func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	params.AddMetadata(MetadataTransactionKey, strconv.FormatInt(req.TransactionID, 10))

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		p.logger.Error("stripe payment intent creation failed",
			"error", err,
			"transaction_id", req.TransactionID,
			"amount_minor", req.AmountMinor)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	p.logger.Info("stripe payment intent created",
		"intent_id", intent.ID,
		"transaction_id", req.TransactionID,
		"amount_minor", req.AmountMinor,
		"currency", req.Currency)

	return &PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
