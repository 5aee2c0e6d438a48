package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the append-only record of one settled transfer.
// Created exactly once per successful settlement, never mutated or deleted.
type LedgerEntry struct {
	ID            string
	Debtor        string // sender participant BIC
	Creditor      string // receiver participant BIC
	Amount        decimal.Decimal
	CorrelationID string // originating instruction id
	CreatedAt     time.Time
}
