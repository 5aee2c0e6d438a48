package agent

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
)

// NotificationInbox is a per-participant queue of settlement
// acknowledgments. Notify blocks until the ack is queued or ctx expires,
// so a full inbox shows up as a delivery failure rather than wedging the
// notifier.
type NotificationInbox struct {
	participantID string
	acks          chan models.SettlementAck
}

func NewNotificationInbox(participantID string, capacity int) *NotificationInbox {
	return &NotificationInbox{
		participantID: participantID,
		acks:          make(chan models.SettlementAck, capacity),
	}
}

func (n *NotificationInbox) Notify(ctx context.Context, ack models.SettlementAck) error {
	select {
	case n.acks <- ack:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "deliver settlement ack to %s", n.participantID)
	}
}

// Acks exposes the queued acknowledgments for consumption.
func (n *NotificationInbox) Acks() <-chan models.SettlementAck {
	return n.acks
}

var _ interfaces.NotificationSink = (*NotificationInbox)(nil)
