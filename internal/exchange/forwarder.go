package exchange

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
)

// DefaultForwardTimeout bounds the receiver handoff so an unreachable
// receiver cannot leave an instruction in a non-terminal state.
const DefaultForwardTimeout = 3 * time.Second

// Forwarder hands a validated instruction to the creditor-side intake.
// It produces a copy with a fresh forwarding id and never mutates ledger
// state; the handoff is the only suspension point besides settlement.
type Forwarder struct {
	intakes map[string]interfaces.ReceiverIntake // keyed by creditor BIC
	timeout time.Duration
	logger  *zap.Logger
}

func NewForwarder(intakes map[string]interfaces.ReceiverIntake, timeout time.Duration, logger *zap.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	return &Forwarder{
		intakes: intakes,
		timeout: timeout,
		logger:  logger,
	}
}

// Forward delivers a copy of in to the creditor's intake and waits for the
// synchronous acknowledgment. The returned error is always a *ReceiverError.
func (f *Forwarder) Forward(ctx context.Context, in models.PaymentInstruction, amount decimal.Decimal) (models.ForwardedInstruction, error) {
	var fwd models.ForwardedInstruction

	intake, ok := f.intakes[in.Creditor]
	if !ok {
		return fwd, &ReceiverError{Kind: ReceiverRejected, Reason: "no intake registered for " + in.Creditor}
	}

	if err := copier.Copy(&fwd, &in); err != nil {
		return fwd, &ReceiverError{Kind: ReceiverRejected, Reason: errors.Wrap(err, "copy instruction").Error()}
	}
	fwd.ForwardingID = uuid.New().String()
	fwd.Amount = amount

	f.logger.Debug("forwarding instruction",
		zap.String("correlation_id", in.CorrelationID),
		zap.String("forwarding_id", fwd.ForwardingID),
		zap.String("creditor", in.Creditor))

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := intake.Deliver(ctx, fwd); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fwd, &ReceiverError{Kind: ReceiverTimeout, Reason: "timeout waiting for receiver"}
		}
		var recvErr *ReceiverError
		if errors.As(err, &recvErr) {
			return fwd, recvErr
		}
		return fwd, &ReceiverError{Kind: ReceiverRejected, Reason: err.Error()}
	}

	return fwd, nil
}
