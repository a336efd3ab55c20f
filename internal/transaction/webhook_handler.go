package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/transport"
)

const (
	SignatureHeader     = "Stripe-Signature"
	maxWebhookBodyBytes = int64(65536)
)

// EventVerifier authenticates a raw webhook body against its signature header.
type EventVerifier interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(endpointSecret string) *StripeVerifier {
	return &StripeVerifier{secret: endpointSecret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

type WebhookHandler struct {
	*transport.BaseHandler
	service  ServiceAPI
	verifier EventVerifier
	guard    ReplayGuard
	metrics  *Metrics
	logger   *slog.Logger
}

func NewWebhookHandler(base *transport.BaseHandler, service ServiceAPI, verifier EventVerifier, guard ReplayGuard, metrics *Metrics, logger *slog.Logger) *WebhookHandler {
	if guard == nil {
		guard = NoopReplayGuard{}
	}
	return &WebhookHandler{
		BaseHandler: base,
		service:     service,
		verifier:    verifier,
		guard:       guard,
		metrics:     metrics,
		logger:      logger,
	}
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Status   string `json:"status"`
}

func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		h.metrics.webhook("unknown", "invalid_payload")
		h.HandleError(w, internal.ErrInvalidPayload.WithCause(err))
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get(SignatureHeader))
	if err != nil {
		appErr := classifyVerifyError(err)
		h.logger.Warn("rejected webhook delivery", "error", err, "code", appErr.Code)
		h.metrics.webhook("unknown", "rejected")
		h.HandleError(w, appErr)
		return
	}

	eventType := string(event.Type)
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		h.logger.Debug("ignoring webhook event", "event_id", event.ID, "event_type", eventType)
		h.metrics.webhook(eventType, "ignored")
		h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true, Status: "ignored"})
		return
	}

	ctx := r.Context()
	claimed, err := h.guard.Claim(ctx, event.ID)
	if err != nil {
		// the transition is idempotent, so a missing replay marker only costs a repeated write
		h.logger.Warn("replay guard unavailable, processing anyway", "error", err, "event_id", event.ID)
		claimed = true
	}
	if !claimed {
		h.logger.Info("duplicate webhook delivery acknowledged", "event_id", event.ID, "event_type", eventType)
		h.metrics.webhook(eventType, "duplicate")
		h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true, Status: "duplicate"})
		return
	}

	if err := h.applySucceeded(r, event); err != nil {
		if releaseErr := h.guard.Release(ctx, event.ID); releaseErr != nil {
			h.logger.Warn("failed to release replay marker", "error", releaseErr, "event_id", event.ID)
		}
		h.logger.Error("failed to handle payment webhook",
			"error", err,
			"event_id", event.ID,
			"event_type", eventType)
		h.metrics.webhook(eventType, "failed")
		h.HandleError(w, internal.ErrUnprocessableEvent.WithCause(err))
		return
	}

	h.metrics.webhook(eventType, "processed")
	h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true, Status: "processed"})
}

func (h *WebhookHandler) applySucceeded(r *http.Request, event stripe.Event) error {
	if event.Data == nil {
		return errors.New("event has no data")
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to decode payment intent: %w", err)
	}

	raw, ok := intent.Metadata[MetadataTransactionKey]
	if !ok || raw == "" {
		return fmt.Errorf("payment intent %s has no %q metadata", intent.ID, MetadataTransactionKey)
	}
	transactionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid transaction metadata %q: %w", raw, err)
	}

	t, err := h.service.MarkPaid(r.Context(), transactionID, SourceWebhook)
	if err != nil {
		return err
	}

	h.logger.Info("payment webhook applied",
		"event_id", event.ID,
		"intent_id", intent.ID,
		"transaction_id", t.ID,
		"status", t.Status)
	return nil
}

func classifyVerifyError(err error) *internal.AppError {
	switch {
	case errors.Is(err, webhook.ErrNotSigned),
		errors.Is(err, webhook.ErrInvalidHeader),
		errors.Is(err, webhook.ErrNoValidSignature),
		errors.Is(err, webhook.ErrTooOld):
		return internal.ErrInvalidSignature.WithCause(err)
	default:
		return internal.ErrInvalidPayload.WithCause(err)
	}
}
