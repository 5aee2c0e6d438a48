package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementCompleted is published after a transfer has committed.
type SettlementCompleted struct {
	CorrelationID string          `json:"correlation_id"`
	Debtor        string          `json:"debtor"`
	Creditor      string          `json:"creditor"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
