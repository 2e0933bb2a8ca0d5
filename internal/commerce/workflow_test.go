package commerce

import (
	"errors"
	"testing"

	"playfarm_back_end/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func makeOrder(t *testing.T, w *Workflow, userID uint, total int64) *models.Order {
	t.Helper()
	order, err := w.Create(userID, []LineInput{
		{ProductID: "melon-01", Title: "Melon de Seongju", UnitPrice: total, Quantity: 1},
	}, total, "")
	require.NoError(t, err)
	return order
}

func TestCreateOrderPersistsSnapshot(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)

	optID := uint(3)
	order, err := w.Create(user.ID, []LineInput{
		{ProductID: "melon-01", Title: "Melon de Seongju", Image: "melon.jpg", UnitPrice: 12000, Quantity: 2},
		{ProductID: "riz-05", Title: "Riz nouveau 10kg", OptionID: &optID, OptionName: "Mouture fine", UnitPrice: 38000, Quantity: 1},
	}, 62000, "Livraison le matin")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.NotEmpty(t, order.OrderCode)
	require.Len(t, order.Items, 2)

	var stored models.Order
	require.NoError(t, db.Preload("Items").First(&stored, order.ID).Error)
	require.Equal(t, int64(62000), stored.TotalAmount)
	require.Equal(t, "Melon de Seongju", stored.Items[0].ProductTitle)
}

func TestCreateOrderValidation(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)

	_, err := w.Create(user.ID, nil, 1000, "")
	require.Equal(t, KindValidation, KindOf(err))

	_, err = w.Create(user.ID, []LineInput{{ProductID: "x", Title: "x", UnitPrice: 100, Quantity: 0}}, 100, "")
	require.Equal(t, KindValidation, KindOf(err))

	_, err = w.Create(user.ID, []LineInput{{ProductID: "x", Title: "x", UnitPrice: -5, Quantity: 1}}, 100, "")
	require.Equal(t, KindValidation, KindOf(err))

	// total déclaré différent de la somme des lignes
	_, err = w.Create(user.ID, []LineInput{{ProductID: "x", Title: "x", UnitPrice: 100, Quantity: 2}}, 150, "")
	require.Equal(t, KindValidation, KindOf(err))
}

func TestPayWithoutPoints(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	result, err := w.Pay(user.ID, order.OrderCode, PayInput{
		Buyer: BuyerInfo{Name: "Kim", Email: "kim@playfarm.kr"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), result.Payment.Amount)
	require.Equal(t, "CARD", result.Payment.Method)
	require.Equal(t, models.PaymentStatusPaid, result.Payment.Status)
	require.NotNil(t, result.Payment.PaidAt)
	require.Equal(t, 500, result.EarnedPoints) // 5 % de 10000

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.Equal(t, models.OrderStatusPaid, stored.Status)

	require.Equal(t, 500, storedBalance(t, db, user.ID))
	requireJournalConsistent(t, db, user.ID, 0)
}

func TestPayWithPoints(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 2000)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	result, err := w.Pay(user.ID, order.OrderCode, PayInput{UsePoints: 2000})
	require.NoError(t, err)

	// encaissé : 10000 - 2000 ; gagné : 5 % de 8000
	require.Equal(t, int64(8000), result.Payment.Amount)
	require.Equal(t, 400, result.EarnedPoints)
	require.Equal(t, 400, storedBalance(t, db, user.ID))

	// deux écritures : USED -2000 puis EARNED +400
	var entries []models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	require.Equal(t, models.PointUsed, entries[0].Type)
	require.Equal(t, -2000, entries[0].Amount)
	require.Equal(t, models.PointEarned, entries[1].Type)
	require.Equal(t, 400, entries[1].Amount)
	require.NotNil(t, entries[1].ExpiresAt)

	requireJournalConsistent(t, db, user.ID, 2000)
}

func TestPayEarnTruncatesTowardZero(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 99)

	result, err := w.Pay(user.ID, order.OrderCode, PayInput{})
	require.NoError(t, err)
	require.Equal(t, 4, result.EarnedPoints) // 99 * 5 / 100, tronqué
}

func TestPayInsufficientPointsLeavesOrderPending(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 100)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{UsePoints: 500})
	require.Equal(t, KindInsufficientFunds, KindOf(err))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.Equal(t, models.OrderStatusPending, stored.Status)

	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&payments).Error)
	require.Zero(t, payments)
	require.Equal(t, 100, storedBalance(t, db, user.ID))
}

func TestPayMorePointsThanTotal(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 50000)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{UsePoints: 10001})
	require.Equal(t, KindValidation, KindOf(err))
	require.Equal(t, 50000, storedBalance(t, db, user.ID))
}

func TestPayTwiceIsConflict(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{})
	require.NoError(t, err)

	_, err = w.Pay(user.ID, order.OrderCode, PayInput{})
	require.Equal(t, KindConflict, KindOf(err))

	// un seul paiement PAID
	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusPaid).
		Count(&payments).Error)
	require.Equal(t, int64(1), payments)
	require.Equal(t, 500, storedBalance(t, db, user.ID))
}

func TestPayForeignOrderIsNotFound(t *testing.T) {
	db := testDB(t)
	owner := newUser(t, db, 0)
	other := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, owner.ID, 10000)

	_, err := w.Pay(other.ID, order.OrderCode, PayInput{})
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestCancelPendingOrder(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	cancelled, err := w.Cancel(user.ID, order.OrderCode, "changement d'avis")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestCancelPaidOrderDirectsToRefund(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{})
	require.NoError(t, err)

	_, err = w.Cancel(user.ID, order.OrderCode, "")
	require.Equal(t, KindInvalidState, KindOf(err))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestRefundRestoresUsedAndClawsEarned(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 2000)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{UsePoints: 2000})
	require.NoError(t, err)
	require.Equal(t, 400, storedBalance(t, db, user.ID))

	result, err := w.Refund(user.ID, order.OrderCode, "produit abîmé")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusRefunded, result.Order.Status)
	require.Equal(t, 2000, result.RestoredPoints)
	require.Equal(t, 400, result.ClawedBack)

	// solde revenu au point de départ
	require.Equal(t, 2000, storedBalance(t, db, user.ID))
	requireJournalConsistent(t, db, user.ID, 2000)

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	require.Equal(t, models.PaymentStatusRefunded, payment.Status)
	require.NotNil(t, payment.RefundedAt)
	require.Equal(t, "produit abîmé", payment.RefundReason)
}

func TestRefundTwiceIsInvalidState(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 2000)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{UsePoints: 2000})
	require.NoError(t, err)
	_, err = w.Refund(user.ID, order.OrderCode, "")
	require.NoError(t, err)

	before := journalBalance(t, db, user.ID)
	var entriesBefore int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&entriesBefore).Error)

	_, err = w.Refund(user.ID, order.OrderCode, "")
	require.Equal(t, KindInvalidState, KindOf(err))

	// le journal n'a pas bougé d'une ligne
	var entriesAfter int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&entriesAfter).Error)
	require.Equal(t, entriesBefore, entriesAfter)
	require.Equal(t, before, journalBalance(t, db, user.ID))
}

func TestRefundPendingOrderIsInvalidState(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Refund(user.ID, order.OrderCode, "")
	require.Equal(t, KindInvalidState, KindOf(err))
}

// Les points gagnés ont déjà été dépensés ailleurs : la reprise est
// plafonnée au solde, jamais de solde négatif, et l'écriture porte le
// montant réellement repris.
func TestRefundClawbackShortfall(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 0)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{})
	require.NoError(t, err)
	require.Equal(t, 500, storedBalance(t, db, user.ID))

	// l'utilisateur dépense 350 des 500 points gagnés sur une autre commande
	other := makeOrder(t, w, user.ID, 5000)
	_, err = w.Pay(user.ID, other.OrderCode, PayInput{UsePoints: 350})
	require.NoError(t, err)
	// 500 - 350 + 5 % de 4650 = 150 + 232
	require.Equal(t, 382, storedBalance(t, db, user.ID))

	result, err := w.Refund(user.ID, order.OrderCode, "")
	require.NoError(t, err)
	require.Zero(t, result.RestoredPoints)
	require.Equal(t, 382, result.ClawedBack) // 500 demandés, 382 disponibles

	require.Zero(t, storedBalance(t, db, user.ID))
	requireJournalConsistent(t, db, user.ID, 0)
}

// Si une écriture échoue en cours de paiement, tout le paiement est annulé :
// ni statut, ni paiement, ni solde ne bougent.
func TestPayRollsBackOnStorageFailure(t *testing.T) {
	db := testDB(t)
	user := newUser(t, db, 2000)
	w := NewWorkflow(db)
	order := makeOrder(t, w, user.ID, 10000)

	// fait échouer l'insertion de l'écriture EARNED
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("fail_earned", func(d *gorm.DB) {
		if entry, ok := d.Statement.Dest.(*models.PointTransaction); ok && entry.Type == models.PointEarned {
			d.AddError(errors.New("disque plein"))
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove("fail_earned") })

	_, err := w.Pay(user.ID, order.OrderCode, PayInput{UsePoints: 2000})
	require.Error(t, err)
	require.Equal(t, KindStorage, KindOf(err))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.Equal(t, models.OrderStatusPending, stored.Status)

	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&payments).Error)
	require.Zero(t, payments)

	require.Equal(t, 2000, storedBalance(t, db, user.ID))

	var entries int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	require.Zero(t, entries)
}
