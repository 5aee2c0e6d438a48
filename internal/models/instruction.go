package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstructionStatus tracks a payment instruction through the exchange pipeline.
type InstructionStatus string

const (
	StatusReceived         InstructionStatus = "Received"
	StatusValidated        InstructionStatus = "Validated"
	StatusRouted           InstructionStatus = "Routed"
	StatusForwarded        InstructionStatus = "Forwarded"
	StatusReceiverAccepted InstructionStatus = "ReceiverAccepted"
	StatusSettling         InstructionStatus = "Settling"
	StatusSettled          InstructionStatus = "Settled"

	StatusRejected         InstructionStatus = "Rejected"
	StatusRoutingFailed    InstructionStatus = "RoutingFailed"
	StatusReceiverRejected InstructionStatus = "ReceiverRejected"
	StatusSettlementFailed InstructionStatus = "SettlementFailed"
)

// Terminal reports whether no further transition can occur from s.
func (s InstructionStatus) Terminal() bool {
	switch s {
	case StatusSettled, StatusRejected, StatusRoutingFailed, StatusReceiverRejected, StatusSettlementFailed:
		return true
	}
	return false
}

// PaymentInstruction is a requested transfer of funds from a debtor to a
// creditor as issued by the originator. Amount is carried as the raw text
// the originator supplied; it is parsed and checked by the validator before
// the instruction enters the pipeline. Status is owned by the exchange.
type PaymentInstruction struct {
	CorrelationID string // assigned by the originator, unique per instruction
	Debtor        string // debtor participant BIC
	Creditor      string // creditor participant BIC
	Amount        string
	Status        InstructionStatus
	CreatedAt     time.Time
}

// ForwardedInstruction is the copy of a validated instruction handed to the
// creditor-side intake. It carries a fresh ForwardingID so the receiver can
// distinguish retries from duplicates.
type ForwardedInstruction struct {
	ForwardingID  string
	CorrelationID string // the originator's id, for reconciliation
	Debtor        string
	Creditor      string
	Amount        decimal.Decimal
}

// Outcome is the terminal result of an instruction, reported back to the
// originator. NotificationWarning is set when settlement acknowledgments
// could not be delivered; it never changes Status.
type Outcome struct {
	CorrelationID       string
	Status              InstructionStatus
	Reason              string
	NotificationWarning string
}

// SettlementAck describes an instruction's final outcome to one party.
type SettlementAck struct {
	InstructionID string
	ParticipantID string
	Debtor        string
	Creditor      string
	Amount        decimal.Decimal
	Outcome       InstructionStatus
	OccurredAt    time.Time
}
