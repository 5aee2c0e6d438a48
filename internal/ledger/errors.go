package ledger

import "fmt"

// SettlementErrorKind tags the reason a transfer failed.
type SettlementErrorKind string

const (
	UnknownAccount       SettlementErrorKind = "UnknownAccount"
	InsufficientFunds    SettlementErrorKind = "InsufficientFunds"
	DuplicateInstruction SettlementErrorKind = "DuplicateInstruction"
	StorageFailure       SettlementErrorKind = "StorageFailure"
)

// SettlementError is terminal for the instruction that caused it; the
// failed transfer leaves no trace in the ledger.
type SettlementError struct {
	Kind   SettlementErrorKind
	Detail string
}

func (e *SettlementError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
