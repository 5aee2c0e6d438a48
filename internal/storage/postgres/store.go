package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/models"
)

// Store is a postgres-backed implementation of interfaces.LedgerStore.
// ApplyTransfer runs both balance updates and the entry insert inside a
// single database transaction, so a crash mid-settlement cannot leave the
// balances inconsistent.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (participant_id, account_number, balance)
	VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, account.ParticipantID, account.Number, account.Balance)
	return err
}

func (s *Store) GetAccount(ctx context.Context, participantID string) (models.Account, error) {
	const query = `SELECT participant_id, account_number, balance FROM accounts
	WHERE participant_id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, participantID).Scan(
		&account.ParticipantID,
		&account.Number,
		&account.Balance,
	)
	if err == sql.ErrNoRows {
		return models.Account{}, errors.Wrap(interfaces.ErrAccountNotFound, participantID)
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *Store) EntryExists(ctx context.Context, correlationID string) (bool, error) {
	const query = `SELECT 1 FROM ledger_entries WHERE correlation_id = $1 LIMIT 1`

	var exists int
	err := s.db.QueryRowContext(ctx, query, correlationID).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ApplyTransfer(ctx context.Context, debtor, creditor models.Account, entry models.LedgerEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	err = s.updateBalance(ctx, dbTx, debtor)
	if err != nil {
		return err
	}

	err = s.updateBalance(ctx, dbTx, creditor)
	if err != nil {
		return err
	}

	err = s.saveEntry(ctx, dbTx, entry)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

func (s *Store) updateBalance(ctx context.Context, dbTx *sql.Tx, account models.Account) error {
	const query = `UPDATE accounts SET balance = $1 WHERE participant_id = $2`

	res, err := dbTx.ExecContext(ctx, query, account.Balance, account.ParticipantID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrap(interfaces.ErrAccountNotFound, account.ParticipantID)
	}
	return nil
}

func (s *Store) saveEntry(ctx context.Context, dbTx *sql.Tx, entry models.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, debtor, creditor, amount, correlation_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := dbTx.ExecContext(ctx, query,
		entry.ID, entry.Debtor, entry.Creditor, entry.Amount, entry.CorrelationID, entry.CreatedAt)
	return err
}

func (s *Store) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	const query = `SELECT id, debtor, creditor, amount, correlation_id, created_at FROM ledger_entries`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *Store) GetEntriesByAccount(ctx context.Context, participantID string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, debtor, creditor, amount, correlation_id, created_at FROM ledger_entries
	WHERE debtor = $1 OR creditor = $1`

	rows, err := s.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Debtor,
			&entry.Creditor,
			&entry.Amount,
			&entry.CorrelationID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ interfaces.LedgerStore = (*Store)(nil)
