package models

import "github.com/shopspring/decimal"

// Account holds a participant's settlement balance.
// Balances are mutated only by the ledger's transfer operation and
// never go negative.
type Account struct {
	ParticipantID string // owning participant BIC
	Number        string
	Balance       decimal.Decimal
}
