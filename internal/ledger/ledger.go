// Package ledger owns account balances and the payment history.
// All balance mutation goes through Transfer, which serializes transfers
// touching a shared account via per-account locks.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
)

// Ledger performs atomic balance transfers against a LedgerStore.
type Ledger struct {
	store  interfaces.LedgerStore
	muMap  map[string]*sync.Mutex // one lock per account, keyed by participant BIC
	mapMu  sync.Mutex             // protects muMap itself
	logger *zap.Logger
}

func NewLedger(store interfaces.LedgerStore, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		muMap:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

func (l *Ledger) getAccountLock(participantID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[participantID]; !exists {
		l.muMap[participantID] = &sync.Mutex{}
	}
	return l.muMap[participantID]
}

// Transfer moves amount from the debtor's account to the creditor's as a
// single atomic unit and appends one LedgerEntry. Either every effect
// commits or none does: a failure at any point leaves both balances at
// their pre-call values.
//
// Locks are always taken in lexical order of the participant id so that
// two transfers referencing the same pair in opposite directions cannot
// deadlock.
func (l *Ledger) Transfer(ctx context.Context, debtorID, creditorID string, amount decimal.Decimal, correlationID string) error {
	debtorMu := l.getAccountLock(debtorID)
	creditorMu := l.getAccountLock(creditorID)

	switch {
	case debtorID == creditorID:
		// same account on both sides, one lock
		debtorMu.Lock()
		defer debtorMu.Unlock()
	case debtorID < creditorID:
		debtorMu.Lock()
		creditorMu.Lock()
		defer debtorMu.Unlock()
		defer creditorMu.Unlock()
	default:
		creditorMu.Lock()
		debtorMu.Lock()
		defer creditorMu.Unlock()
		defer debtorMu.Unlock()
	}

	// A correlation id that already settled must not settle again:
	// resubmitting the same instruction would double-move the money.
	exists, err := l.store.EntryExists(ctx, correlationID)
	if err != nil {
		return &SettlementError{Kind: StorageFailure, Detail: err.Error()}
	}
	if exists {
		return &SettlementError{Kind: DuplicateInstruction, Detail: "correlation id " + correlationID + " already settled"}
	}

	debtor, err := l.resolveAccount(ctx, debtorID, "debtor")
	if err != nil {
		return err
	}
	creditor, err := l.resolveAccount(ctx, creditorID, "creditor")
	if err != nil {
		return err
	}

	// Balance is re-read under the account locks, so this check cannot
	// race with another transfer debiting the same account.
	if debtor.Balance.LessThan(amount) {
		return &SettlementError{
			Kind:   InsufficientFunds,
			Detail: "required " + amount.String() + ", available " + debtor.Balance.String(),
		}
	}

	if debtorID == creditorID {
		// debit and credit cancel out on the same account
		creditor = debtor
	} else {
		debtor.Balance = debtor.Balance.Sub(amount)
		creditor.Balance = creditor.Balance.Add(amount)
	}

	entry := models.LedgerEntry{
		ID:            uuid.New().String(),
		Debtor:        debtorID,
		Creditor:      creditorID,
		Amount:        amount,
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := l.store.ApplyTransfer(ctx, debtor, creditor, entry); err != nil {
		return &SettlementError{Kind: StorageFailure, Detail: err.Error()}
	}

	l.logger.Info("transfer settled",
		zap.String("correlation_id", correlationID),
		zap.String("debtor", debtorID),
		zap.String("creditor", creditorID),
		zap.String("amount", amount.String()))

	return nil
}

func (l *Ledger) resolveAccount(ctx context.Context, participantID, side string) (models.Account, error) {
	account, err := l.store.GetAccount(ctx, participantID)
	if err != nil {
		if errors.Is(err, interfaces.ErrAccountNotFound) {
			return models.Account{}, &SettlementError{Kind: UnknownAccount, Detail: side + " " + participantID}
		}
		return models.Account{}, &SettlementError{Kind: StorageFailure, Detail: err.Error()}
	}
	return account, nil
}

// Balance returns the current balance of a participant's account.
func (l *Ledger) Balance(ctx context.Context, participantID string) (decimal.Decimal, error) {
	account, err := l.store.GetAccount(ctx, participantID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Entries returns the full payment history.
func (l *Ledger) Entries(ctx context.Context) ([]models.LedgerEntry, error) {
	return l.store.GetLedgerEntries(ctx)
}

// EntriesByAccount returns the payment history touching one participant.
func (l *Ledger) EntriesByAccount(ctx context.Context, participantID string) ([]models.LedgerEntry, error) {
	return l.store.GetEntriesByAccount(ctx, participantID)
}
