package commerce

import (
	"sync"
	"testing"
	"time"

	"playfarm_back_end/internal/models"

	"github.com/stretchr/testify/require"
)

func TestLedgerCreditWritesJournalEntry(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	var ledger Ledger

	expiry := time.Now().AddDate(1, 0, 0)
	balance, err := ledger.Credit(db, user.ID, 500, models.PointEarned, 42, "Points gagnés au paiement", &expiry)
	require.NoError(t, err)
	require.Equal(t, 500, balance)

	var entry models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	require.Equal(t, models.PointEarned, entry.Type)
	require.Equal(t, 500, entry.Amount)
	require.Equal(t, 500, entry.BalanceAfter)
	require.Equal(t, uint(42), entry.SourceID)
	require.NotNil(t, entry.ExpiresAt)

	requireJournalConsistent(t, db, user.ID, 0)
}

func TestLedgerCreditRejectsNonPositiveAmount(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	var ledger Ledger

	_, err := ledger.Credit(db, user.ID, 0, models.PointEarned, 1, "", nil)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = ledger.Credit(db, user.ID, -10, models.PointEarned, 1, "", nil)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestLedgerCreditUnknownUser(t *testing.T) {
	db := testDB(t)
	var ledger Ledger

	_, err := ledger.Credit(db, 9999, 100, models.PointEarned, 1, "", nil)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestLedgerDebitStoresNegativeAmount(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 1000)
	var ledger Ledger

	balance, err := ledger.Debit(db, user.ID, 300, 7, "Points utilisés au paiement")
	require.NoError(t, err)
	require.Equal(t, 700, balance)

	var entry models.PointTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.PointUsed).First(&entry).Error)
	require.Equal(t, -300, entry.Amount)
	require.Equal(t, 700, entry.BalanceAfter)

	requireJournalConsistent(t, db, user.ID, 1000)
}

func TestLedgerDebitInsufficientBalance(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 100)
	var ledger Ledger

	_, err := ledger.Debit(db, user.ID, 101, 7, "")
	require.Equal(t, KindInsufficientFunds, KindOf(err))

	// rien ne doit avoir bougé
	require.Equal(t, 100, storedBalance(t, db, user.ID))
	var count int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestLedgerDebitUpToClampsAtBalance(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 40)
	var ledger Ledger

	debited, balance, err := ledger.DebitUpTo(db, user.ID, 100, 7, "Reprise des points gagnés")
	require.NoError(t, err)
	require.Equal(t, 40, debited)
	require.Zero(t, balance)

	// l'écriture porte le montant réellement repris, pas le demandé
	var entry models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	require.Equal(t, -40, entry.Amount)

	requireJournalConsistent(t, db, user.ID, 40)
}

func TestLedgerDebitUpToZeroBalance(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	var ledger Ledger

	debited, balance, err := ledger.DebitUpTo(db, user.ID, 50, 7, "")
	require.NoError(t, err)
	require.Zero(t, debited)
	require.Zero(t, balance)

	// solde nul : aucune écriture
	var count int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)
}

// Deux débits concurrents ne doivent jamais se perdre l'un l'autre : avec
// 100 points et des débits de 30, exactement trois peuvent réussir.
func TestLedgerConcurrentDebits(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 100)
	var ledger Ledger

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ledger.Debit(db, user.ID, 30, uint(i+1), "débit concurrent")
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.Equal(t, KindInsufficientFunds, KindOf(err))
		}
	}
	require.Equal(t, 3, succeeded)
	require.Equal(t, 10, storedBalance(t, db, user.ID))
	requireJournalConsistent(t, db, user.ID, 100)
}
