package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/internal/models"
	"github.com/clearrail/rtr-clearing/internal/storage/memory"
)

func newTestLedger(t *testing.T, balances map[string]int64) (*Ledger, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	for participantID, balance := range balances {
		err := store.CreateAccount(context.Background(), models.Account{
			ParticipantID: participantID,
			Number:        "ACC-" + participantID,
			Balance:       decimal.NewFromInt(balance),
		})
		require.NoError(t, err)
	}
	return NewLedger(store, zap.NewNop()), store
}

func balanceOf(t *testing.T, l *Ledger, participantID string) decimal.Decimal {
	t.Helper()

	balance, err := l.Balance(context.Background(), participantID)
	require.NoError(t, err)
	return balance
}

func TestTransferMovesMoney(t *testing.T) {
	l, _ := newTestLedger(t, map[string]int64{"BANKA": 1000, "BANKB": 1000})

	err := l.Transfer(context.Background(), "BANKA", "BANKB", decimal.NewFromInt(500), "corr-1")
	require.NoError(t, err)

	assert.True(t, balanceOf(t, l, "BANKA").Equal(decimal.NewFromInt(500)))
	assert.True(t, balanceOf(t, l, "BANKB").Equal(decimal.NewFromInt(1500)))

	entries, err := l.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BANKA", entries[0].Debtor)
	assert.Equal(t, "BANKB", entries[0].Creditor)
	assert.Equal(t, "corr-1", entries[0].CorrelationID)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.NotEmpty(t, entries[0].ID)
}

func TestTransferInsufficientFunds(t *testing.T) {
	l, _ := newTestLedger(t, map[string]int64{"BANKA": 100, "BANKB": 1000})

	err := l.Transfer(context.Background(), "BANKA", "BANKB", decimal.NewFromInt(500), "corr-1")

	var serr *SettlementError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InsufficientFunds, serr.Kind)

	// both balances bit-identical to their pre-call values
	assert.True(t, balanceOf(t, l, "BANKA").Equal(decimal.NewFromInt(100)))
	assert.True(t, balanceOf(t, l, "BANKB").Equal(decimal.NewFromInt(1000)))

	entries, err := l.Entries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransferUnknownAccount(t *testing.T) {
	l, _ := newTestLedger(t, map[string]int64{"BANKA": 1000})

	err := l.Transfer(context.Background(), "BANKA", "GHOST", decimal.NewFromInt(10), "corr-1")
	var serr *SettlementError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, UnknownAccount, serr.Kind)
	assert.Contains(t, serr.Detail, "creditor")

	err = l.Transfer(context.Background(), "GHOST", "BANKA", decimal.NewFromInt(10), "corr-2")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, UnknownAccount, serr.Kind)
	assert.Contains(t, serr.Detail, "debtor")

	assert.True(t, balanceOf(t, l, "BANKA").Equal(decimal.NewFromInt(1000)))
}

func TestTransferDuplicateCorrelationID(t *testing.T) {
	l, _ := newTestLedger(t, map[string]int64{"BANKA": 1000, "BANKB": 0})

	require.NoError(t, l.Transfer(context.Background(), "BANKA", "BANKB", decimal.NewFromInt(100), "corr-1"))

	err := l.Transfer(context.Background(), "BANKA", "BANKB", decimal.NewFromInt(100), "corr-1")
	var serr *SettlementError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, DuplicateInstruction, serr.Kind)

	// the duplicate must not double-settle
	assert.True(t, balanceOf(t, l, "BANKA").Equal(decimal.NewFromInt(900)))
	assert.True(t, balanceOf(t, l, "BANKB").Equal(decimal.NewFromInt(100)))

	entries, err := l.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTransferSelfIsNetZero(t *testing.T) {
	l, _ := newTestLedger(t, map[string]int64{"BANKA": 1000})

	err := l.Transfer(context.Background(), "BANKA", "BANKA", decimal.NewFromInt(250), "corr-1")
	require.NoError(t, err)

	assert.True(t, balanceOf(t, l, "BANKA").Equal(decimal.NewFromInt(1000)))
}

func TestTransferConservation(t *testing.T) {
	l, _ := newTestLedger(t, map[string]int64{"BANKA": 5000, "BANKB": 7500, "BANKC": 3000})

	total := decimal.NewFromInt(5000 + 7500 + 3000)

	transfers := []struct {
		debtor, creditor, corr string
		amount                 int64
	}{
		{"BANKA", "BANKB", "c1", 1200},
		{"BANKB", "BANKC", "c2", 4000},
		{"BANKC", "BANKA", "c3", 6999},
		{"BANKA", "BANKC", "c4", 99000}, // fails, insufficient funds
		{"BANKB", "BANKA", "c5", 1},
	}
	for _, tr := range transfers {
		_ = l.Transfer(context.Background(), tr.debtor, tr.creditor, decimal.NewFromInt(tr.amount), tr.corr)
	}

	sum := balanceOf(t, l, "BANKA").Add(balanceOf(t, l, "BANKB")).Add(balanceOf(t, l, "BANKC"))
	assert.True(t, sum.Equal(total), "sum of balances changed: %s != %s", sum, total)

	// no account ever goes negative
	for _, id := range []string{"BANKA", "BANKB", "BANKC"} {
		assert.False(t, balanceOf(t, l, id).IsNegative(), "%s is negative", id)
	}
}

func TestConcurrentDebitsSerialize(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLedger(t, map[string]int64{"BANKA": 1000, "BANKB": 500})

	const workers = 20
	amount := decimal.NewFromInt(100) // only 10 of 20 debits can be funded

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- l.Transfer(context.Background(), "BANKA", "BANKB", amount, corrID(n))
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var serr *SettlementError
		require.ErrorAs(t, err, &serr)
		require.Equal(t, InsufficientFunds, serr.Kind)
		insufficient++
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, insufficient)
	assert.True(t, balanceOf(t, l, "BANKA").Equal(decimal.Zero))
	assert.True(t, balanceOf(t, l, "BANKB").Equal(decimal.NewFromInt(1500)))

	entries, err := l.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestOppositeDirectionTransfersNoDeadlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLedger(t, map[string]int64{"BANKA": 10000, "BANKB": 10000})

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = l.Transfer(context.Background(), "BANKA", "BANKB", decimal.NewFromInt(10), corrID(1000+i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_ = l.Transfer(context.Background(), "BANKB", "BANKA", decimal.NewFromInt(10), corrID(2000+i))
		}
	}()
	wg.Wait()

	sum := balanceOf(t, l, "BANKA").Add(balanceOf(t, l, "BANKB"))
	assert.True(t, sum.Equal(decimal.NewFromInt(20000)))
}

func corrID(n int) string {
	return fmt.Sprintf("corr-%d", n)
}
