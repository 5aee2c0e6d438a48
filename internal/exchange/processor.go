// Package exchange implements the clearing pipeline: an instruction is
// validated, routed, forwarded to the creditor side, settled against the
// ledger and acknowledged to both parties. Every submission terminates in
// exactly one terminal status.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/internal/models"
)

// SettlementLedger applies atomic balance transfers.
type SettlementLedger interface {
	Transfer(ctx context.Context, debtorID, creditorID string, amount decimal.Decimal, correlationID string) error
}

// SettlementNotifier reports a settled instruction to both parties.
// Its error is a delivery warning only and never reverts a settlement.
type SettlementNotifier interface {
	SettlementComplete(ctx context.Context, correlationID, debtorID, creditorID string, amount decimal.Decimal) error
}

// Processor is the exchange state machine. One call to Submit drives a
// single instruction through the whole pipeline sequentially; multiple
// instructions may be submitted concurrently.
type Processor struct {
	validator Validator
	router    *Router
	forwarder *Forwarder
	ledger    SettlementLedger
	notifier  SettlementNotifier
	logger    *zap.Logger
}

func NewProcessor(router *Router, forwarder *Forwarder, ledger SettlementLedger, notifier SettlementNotifier, logger *zap.Logger) *Processor {
	return &Processor{
		router:    router,
		forwarder: forwarder,
		ledger:    ledger,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit processes an instruction end to end and returns its terminal
// outcome. It never returns a non-terminal status: every failure along the
// pipeline maps to one of Rejected, RoutingFailed, ReceiverRejected or
// SettlementFailed, and success is Settled.
func (p *Processor) Submit(ctx context.Context, in models.PaymentInstruction) models.Outcome {
	in.Status = models.StatusReceived
	log := p.logger.With(zap.String("correlation_id", in.CorrelationID))

	amount, err := p.validator.Validate(in)
	if err != nil {
		log.Info("instruction rejected", zap.Error(err))
		return p.terminal(in, models.StatusRejected, err.Error())
	}
	in.Status = models.StatusValidated

	if err := p.router.Route(in.Debtor, in.Creditor); err != nil {
		log.Info("routing failed", zap.Error(err))
		return p.terminal(in, models.StatusRoutingFailed, err.Error())
	}
	in.Status = models.StatusRouted

	// The handoff is always attempted once routed; the receiver's
	// synchronous response decides the next transition.
	in.Status = models.StatusForwarded
	if _, err := p.forwarder.Forward(ctx, in, amount); err != nil {
		log.Info("receiver rejected instruction", zap.Error(err))
		return p.terminal(in, models.StatusReceiverRejected, err.Error())
	}
	in.Status = models.StatusReceiverAccepted

	in.Status = models.StatusSettling
	if err := p.ledger.Transfer(ctx, in.Debtor, in.Creditor, amount, in.CorrelationID); err != nil {
		log.Warn("settlement failed", zap.Error(err))
		return p.terminal(in, models.StatusSettlementFailed, err.Error())
	}
	in.Status = models.StatusSettled

	outcome := p.terminal(in, models.StatusSettled, "settlement complete")

	// Money movement is already final; acknowledgment delivery is
	// best-effort and a failure is surfaced as a warning only.
	if err := p.notifier.SettlementComplete(ctx, in.CorrelationID, in.Debtor, in.Creditor, amount); err != nil {
		log.Warn("settlement notification failed", zap.Error(err))
		outcome.NotificationWarning = err.Error()
	}

	log.Info("instruction settled",
		zap.String("debtor", in.Debtor),
		zap.String("creditor", in.Creditor),
		zap.String("amount", amount.String()))

	return outcome
}

func (p *Processor) terminal(in models.PaymentInstruction, status models.InstructionStatus, reason string) models.Outcome {
	return models.Outcome{
		CorrelationID: in.CorrelationID,
		Status:        status,
		Reason:        reason,
	}
}
