package notification

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/frahmantamala/school-platform/internal/core/events"
)

// ReceiptSource loads the printable details of a transaction.
type ReceiptSource interface {
	ReceiptFor(ctx context.Context, transactionID int64) (*Receipt, error)
}

type EventHandler struct {
	receipts ReceiptSource
	mailer   Mailer
	currency string
	logger   *slog.Logger
}

func NewEventHandler(receipts ReceiptSource, mailer Mailer, currency string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		receipts: receipts,
		mailer:   mailer,
		currency: strings.ToUpper(currency),
		logger:   logger,
	}
}

func (h *EventHandler) HandleTransactionCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.TransactionCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for transaction completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionCompletedEvent, got %T", event)
	}

	receipt, err := h.receipts.ReceiptFor(ctx, completed.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to load receipt for transaction %d: %w", completed.TransactionID, err)
	}
	receipt.Currency = h.currency

	pdf, err := RenderReceipt(*receipt)
	if err != nil {
		return err
	}

	msg := Message{
		To:      receipt.StudentEmail,
		Subject: fmt.Sprintf("Your receipt for %s", receipt.CourseTitle),
		HTMLBody: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for purchasing <strong>%s</strong>. Your receipt is attached.</p>",
			html.EscapeString(receipt.StudentName), html.EscapeString(receipt.CourseTitle)),
		Attachments: []Attachment{{Name: receipt.Filename(), Data: pdf}},
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to mail receipt for transaction %d: %w", completed.TransactionID, err)
	}

	h.logger.Info("purchase receipt sent",
		"transaction_id", completed.TransactionID,
		"event_id", completed.EventID(),
		"source", completed.Source)
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeTransactionCompleted, h.HandleTransactionCompleted)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeTransactionCompleted})
}
