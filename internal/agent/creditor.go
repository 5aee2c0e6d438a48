// Package agent holds the participant-side collaborators of the exchange:
// the creditor intake that acknowledges forwarded instructions and the
// notification inboxes that collect settlement acks. Both are backed by
// channels so a real transport can replace them without touching the
// exchange state machine.
package agent

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
)

type delivery struct {
	fwd   models.ForwardedInstruction
	reply chan error
}

// ReviewFunc lets a creditor agent decline a forwarded instruction.
// A nil return accepts it.
type ReviewFunc func(models.ForwardedInstruction) error

// CreditorAgent consumes forwarded instructions addressed to one
// participant and answers each with an acceptance or a rejection.
type CreditorAgent struct {
	participantID string
	review        ReviewFunc
	inbox         chan delivery
	done          chan struct{}
	stopped       chan struct{}
	logger        *zap.Logger
}

// NewCreditorAgent creates an agent for participantID. review may be nil,
// in which case every instruction is accepted.
func NewCreditorAgent(participantID string, review ReviewFunc, logger *zap.Logger) *CreditorAgent {
	return &CreditorAgent{
		participantID: participantID,
		review:        review,
		inbox:         make(chan delivery),
		done:          make(chan struct{}),
		stopped:       make(chan struct{}),
		logger:        logger.With(zap.String("participant", participantID)),
	}
}

// Start runs the acknowledgment loop until Stop is called.
func (a *CreditorAgent) Start() {
	go a.run()
}

func (a *CreditorAgent) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.done:
			return
		case d := <-a.inbox:
			d.reply <- a.acknowledge(d.fwd)
		}
	}
}

func (a *CreditorAgent) acknowledge(fwd models.ForwardedInstruction) error {
	if a.review != nil {
		if err := a.review(fwd); err != nil {
			a.logger.Info("instruction declined",
				zap.String("forwarding_id", fwd.ForwardingID),
				zap.Error(err))
			return err
		}
	}
	a.logger.Debug("instruction accepted",
		zap.String("forwarding_id", fwd.ForwardingID),
		zap.String("amount", fwd.Amount.String()))
	return nil
}

// Stop shuts the agent down and waits for the loop to exit.
func (a *CreditorAgent) Stop() {
	close(a.done)
	<-a.stopped
}

// Deliver hands a forwarded instruction to the agent and waits for its
// synchronous acknowledgment, bounded by ctx.
func (a *CreditorAgent) Deliver(ctx context.Context, fwd models.ForwardedInstruction) error {
	d := delivery{fwd: fwd, reply: make(chan error, 1)}

	select {
	case a.inbox <- d:
	case <-a.done:
		return errors.New("receiver intake stopped")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-d.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ interfaces.ReceiverIntake = (*CreditorAgent)(nil)
