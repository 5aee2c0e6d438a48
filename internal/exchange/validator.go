package exchange

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clearrail/rtr-clearing/internal/models"
)

// Validator checks an instruction's structural completeness and numeric
// sanity before it enters the pipeline. It is side-effect-free and fails
// fast on the first violation.
type Validator struct{}

// Validate returns the parsed amount on success. Checks run in order:
// debtor, creditor, amount (present, parseable, strictly positive),
// correlation id.
func (Validator) Validate(in models.PaymentInstruction) (decimal.Decimal, error) {
	if strings.TrimSpace(in.Debtor) == "" {
		return decimal.Zero, &ValidationError{Kind: MissingField, Field: "debtor"}
	}
	if strings.TrimSpace(in.Creditor) == "" {
		return decimal.Zero, &ValidationError{Kind: MissingField, Field: "creditor"}
	}

	raw := strings.TrimSpace(in.Amount)
	if raw == "" {
		return decimal.Zero, &ValidationError{Kind: MissingField, Field: "amount"}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Kind: InvalidAmount}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &ValidationError{Kind: InvalidAmount}
	}

	if strings.TrimSpace(in.CorrelationID) == "" {
		return decimal.Zero, &ValidationError{Kind: MissingField, Field: "correlation_id"}
	}

	return amount, nil
}
