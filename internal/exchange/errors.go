package exchange

import "fmt"

// ValidationKind tags why an instruction failed structural validation.
type ValidationKind string

const (
	MissingField  ValidationKind = "MissingField"
	InvalidAmount ValidationKind = "InvalidAmount"
)

// ValidationError rejects an instruction before it enters the pipeline.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s:%s", e.Kind, e.Field)
}

// RoutingError names the side(s) of an instruction that did not resolve to
// a known settlement-eligible participant.
type RoutingError struct {
	Which string // "debtor", "creditor" or "debtor, creditor"
}

func (e *RoutingError) Error() string {
	return "UnknownParticipant:" + e.Which
}

// ReceiverErrorKind tags how the creditor-side handoff failed.
type ReceiverErrorKind string

const (
	ReceiverRejected ReceiverErrorKind = "Rejected"
	ReceiverTimeout  ReceiverErrorKind = "Timeout"
)

// ReceiverError means the forwarded copy was not accepted; the attempted
// transfer is abandoned without touching the ledger.
type ReceiverError struct {
	Kind   ReceiverErrorKind
	Reason string
}

func (e *ReceiverError) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}
