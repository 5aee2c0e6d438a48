package interfaces

import (
	"context"
	"errors"

	"github.com/clearrail/rtr-clearing/internal/models"
)

// ErrAccountNotFound is returned by GetAccount when no account exists for
// the given participant.
var ErrAccountNotFound = errors.New("account not found")

// LedgerStore is the persistence boundary for accounts and ledger entries.
// ApplyTransfer must commit both balance updates and the entry insert as a
// single atomic unit; a failure leaves the pre-transfer balances intact.
type LedgerStore interface {
	CreateAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, participantID string) (models.Account, error)
	EntryExists(ctx context.Context, correlationID string) (bool, error)
	ApplyTransfer(ctx context.Context, debtor, creditor models.Account, entry models.LedgerEntry) error
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
	GetEntriesByAccount(ctx context.Context, participantID string) ([]models.LedgerEntry, error)
}
