// Package notifier delivers settlement-completion acknowledgments to both
// sides of an instruction after a successful transfer. Delivery is
// best-effort: a failure is retried briefly, then logged and surfaced as a
// warning, never reverting the already-committed settlement.
package notifier

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
	"github.com/clearrail/rtr-clearing/internal/models/events"
	"github.com/clearrail/rtr-clearing/pkg/retrier"
)

// NotificationError reports which deliveries failed. Non-fatal.
type NotificationError struct {
	Failed []string // participant ids (or "event bus") that missed the ack
}

func (e *NotificationError) Error() string {
	return "DeliveryFailed: " + strings.Join(e.Failed, ", ")
}

// Notifier fans a settlement ack out to the per-participant sinks and,
// when a publisher is configured, to the settlement event topic.
type Notifier struct {
	sinks     map[string]interfaces.NotificationSink // keyed by participant BIC
	publisher interfaces.EventPublisher              // optional
	retrier   *retrier.Retrier
	logger    *zap.Logger
}

func New(sinks map[string]interfaces.NotificationSink, publisher interfaces.EventPublisher, logger *zap.Logger) *Notifier {
	r := retrier.New(
		retrier.WithInitialInterval(50*time.Millisecond),
		retrier.WithMaxRetries(2),
	)
	return &Notifier{
		sinks:     sinks,
		publisher: publisher,
		retrier:   r,
		logger:    logger,
	}
}

// SettlementComplete notifies debtor and creditor of a settled instruction.
// Every delivery is attempted even when an earlier one fails; the combined
// failures come back as a *NotificationError.
func (n *Notifier) SettlementComplete(ctx context.Context, correlationID, debtorID, creditorID string, amount decimal.Decimal) error {
	now := time.Now().UTC()
	var failed []string

	for _, participantID := range []string{debtorID, creditorID} {
		ack := models.SettlementAck{
			InstructionID: correlationID,
			ParticipantID: participantID,
			Debtor:        debtorID,
			Creditor:      creditorID,
			Amount:        amount,
			Outcome:       models.StatusSettled,
			OccurredAt:    now,
		}
		if err := n.deliver(ctx, ack); err != nil {
			n.logger.Warn("settlement ack delivery failed",
				zap.String("correlation_id", correlationID),
				zap.String("participant", participantID),
				zap.Error(err))
			failed = append(failed, participantID)
		}
	}

	if n.publisher != nil {
		event := events.SettlementCompleted{
			CorrelationID: correlationID,
			Debtor:        debtorID,
			Creditor:      creditorID,
			Amount:        amount,
			OccurredAt:    now,
		}
		if err := n.publisher.Publish(ctx, "settlement_completed", event); err != nil {
			n.logger.Warn("settlement event publish failed",
				zap.String("correlation_id", correlationID),
				zap.Error(err))
			failed = append(failed, "event bus")
		}
	}

	if len(failed) > 0 {
		return &NotificationError{Failed: failed}
	}
	return nil
}

func (n *Notifier) deliver(ctx context.Context, ack models.SettlementAck) error {
	sink, ok := n.sinks[ack.ParticipantID]
	if !ok {
		// no sink registered means the participant does not take acks
		return nil
	}
	return n.retrier.Do(ctx, func(ctx context.Context) error {
		return sink.Notify(ctx, ack)
	})
}
