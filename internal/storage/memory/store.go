package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
)

// Store is an in-memory implementation of interfaces.LedgerStore.
// It is safe for concurrent use; ApplyTransfer commits both balance updates
// and the entry under one mutex hold, so readers never observe a half-moved
// transfer.
type Store struct {
	mu            sync.Mutex
	accounts      map[string]models.Account // keyed by participant BIC
	entries       []models.LedgerEntry
	byCorrelation map[string]struct{} // settled correlation ids
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]models.Account),
		byCorrelation: make(map[string]struct{}),
	}
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ParticipantID]; exists {
		return errors.Errorf("account for participant %s already exists", account.ParticipantID)
	}
	s.accounts[account.ParticipantID] = account
	return nil
}

func (s *Store) GetAccount(ctx context.Context, participantID string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[participantID]
	if !ok {
		return models.Account{}, errors.Wrap(interfaces.ErrAccountNotFound, participantID)
	}
	return account, nil
}

func (s *Store) EntryExists(ctx context.Context, correlationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.byCorrelation[correlationID]
	return exists, nil
}

// ApplyTransfer persists both post-transfer balances and the entry as one
// unit. The accounts must already exist; the caller has adjusted the
// balances under its own account locks.
func (s *Store) ApplyTransfer(ctx context.Context, debtor, creditor models.Account, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[debtor.ParticipantID]; !ok {
		return errors.Wrap(interfaces.ErrAccountNotFound, debtor.ParticipantID)
	}
	if _, ok := s.accounts[creditor.ParticipantID]; !ok {
		return errors.Wrap(interfaces.ErrAccountNotFound, creditor.ParticipantID)
	}

	s.accounts[debtor.ParticipantID] = debtor
	s.accounts[creditor.ParticipantID] = creditor
	s.entries = append(s.entries, entry)
	s.byCorrelation[entry.CorrelationID] = struct{}{}
	return nil
}

// GetLedgerEntries returns a copy of the full payment history so callers
// cannot modify internal state.
func (s *Store) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.LedgerEntry, len(s.entries))
	copy(copied, s.entries)
	return copied, nil
}

func (s *Store) GetEntriesByAccount(ctx context.Context, participantID string) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.LedgerEntry
	for _, e := range s.entries {
		if e.Debtor == participantID || e.Creditor == participantID {
			result = append(result, e)
		}
	}
	return result, nil
}

// Compile-time check: Store implements LedgerStore.
var _ interfaces.LedgerStore = (*Store)(nil)
