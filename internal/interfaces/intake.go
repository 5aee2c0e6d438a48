package interfaces

import (
	"context"

	"github.com/clearrail/rtr-clearing/internal/models"
)

// ReceiverIntake accepts forwarded instructions on behalf of a creditor
// participant. A nil return is acceptance; any error is a rejection.
// Implementations must honor ctx cancellation so the forwarder can bound
// the handoff with a timeout.
type ReceiverIntake interface {
	Deliver(ctx context.Context, fwd models.ForwardedInstruction) error
}

// NotificationSink receives settlement acknowledgments for one participant.
// Delivery is best-effort; errors are reported but never revert a settlement.
type NotificationSink interface {
	Notify(ctx context.Context, ack models.SettlementAck) error
}
