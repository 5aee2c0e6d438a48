package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/clearrail/rtr-clearing/internal/models"
)

// DebtorAgent issues payment instructions on behalf of one participant.
// The originator owns the correlation id; a retry must be issued as a new
// instruction with a new id.
type DebtorAgent struct {
	participantID string
}

func NewDebtorAgent(participantID string) *DebtorAgent {
	return &DebtorAgent{participantID: participantID}
}

// Issue creates an instruction to pay amount to the creditor. If
// correlationID is empty a fresh one is assigned.
func (a *DebtorAgent) Issue(creditorID, amount, correlationID string) models.PaymentInstruction {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return models.PaymentInstruction{
		CorrelationID: correlationID,
		Debtor:        a.participantID,
		Creditor:      creditorID,
		Amount:        amount,
		Status:        models.StatusReceived,
		CreatedAt:     time.Now().UTC(),
	}
}
