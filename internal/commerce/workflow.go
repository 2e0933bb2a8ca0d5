package commerce

import (
	"errors"
	"fmt"
	"log"
	"time"

	"playfarm_back_end/internal/models"

	"gorm.io/gorm"
)

// Workflow orchestre les quatre opérations qui font bouger l'état :
// création, paiement, annulation, remboursement. Chaque opération ouvre une
// transaction SQL, valide l'état courant, applique toutes les mutations
// (commande, paiement, solde de points, journal) et committe ou annule le
// tout d'un bloc — jamais d'écriture partielle.
type Workflow struct {
	db       *gorm.DB
	ledger   Ledger
	payments PaymentRecord
}

func NewWorkflow(db *gorm.DB) *Workflow {
	return &Workflow{db: db}
}

// LineInput : snapshot d'une ligne au moment de la commande, fourni par
// l'appelant (le workflow fait confiance aux données dénormalisées).
type LineInput struct {
	ProductID  string
	Title      string
	Image      string
	OptionID   *uint
	OptionName string
	UnitPrice  int64
	Quantity   int
}

// PayInput : paramètres du paiement d'une commande.
type PayInput struct {
	Method    string
	Buyer     BuyerInfo
	UsePoints int
}

// PayResult : paiement enregistré + points gagnés lors de ce paiement.
type PayResult struct {
	Payment      *models.Payment
	OrderCode    string
	EarnedPoints int
}

// Create persiste une commande PENDING et ses lignes, d'un bloc.
// Le total déclaré doit être égal à la somme des lignes : le total n'est
// jamais recalculé ensuite, autant le verrouiller à l'entrée.
func (w *Workflow) Create(userID uint, lines []LineInput, declaredTotal int64, memo string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, newError(KindValidation, "aucun article à commander")
	}
	if declaredTotal <= 0 {
		return nil, newError(KindValidation, "montant de commande invalide : %d", declaredTotal)
	}

	var sum int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, newError(KindValidation, "quantité invalide pour l'article %s", line.ProductID)
		}
		if line.UnitPrice < 0 {
			return nil, newError(KindValidation, "prix unitaire invalide pour l'article %s", line.ProductID)
		}
		sum += line.UnitPrice * int64(line.Quantity)
	}
	if sum != declaredTotal {
		return nil, newError(KindValidation, "le montant déclaré (%d) ne correspond pas à la somme des lignes (%d)", declaredTotal, sum)
	}

	order := models.Order{
		OrderCode:   NewOrderCode(),
		UserID:      userID,
		Status:      models.OrderStatusPending,
		TotalAmount: declaredTotal,
		Memo:        memo,
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductTitle: line.Title,
			ProductImage: line.Image,
			OptionID:     line.OptionID,
			OptionName:   line.OptionName,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
		})
	}

	err := w.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, asCommerceError(err)
	}

	log.Printf("🛒 Commande %s créée (%d articles, %d) pour user %d", order.OrderCode, len(order.Items), order.TotalAmount, userID)
	return &order, nil
}

// Pay règle une commande PENDING : débit optionnel de points, passage en
// PAID, enregistrement du paiement, puis crédit des points gagnés (5 % du
// montant encaissé, arrondi à l'entier inférieur, valables un an). Le tout
// dans une seule transaction.
func (w *Workflow) Pay(userID uint, orderCode string, in PayInput) (*PayResult, error) {
	if in.UsePoints < 0 {
		return nil, newError(KindValidation, "nombre de points invalide : %d", in.UsePoints)
	}
	method := in.Method
	if method == "" {
		method = "CARD"
	}

	var result PayResult
	err := w.db.Transaction(func(tx *gorm.DB) error {
		order, err := w.loadOrder(tx, userID, orderCode)
		if err != nil {
			return err
		}

		// Garde anti double paiement avant le contrôle de statut : repayer
		// une commande déjà payée répond CONFLICT, pas INVALID_STATE.
		var paid int64
		if err := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", order.ID, models.PaymentStatusPaid).
			Count(&paid).Error; err != nil {
			return storageError(err)
		}
		if paid > 0 {
			return newError(KindConflict, "cette commande est déjà payée")
		}

		if order.Status != models.OrderStatusPending {
			return newError(KindInvalidState, "paiement impossible (statut actuel : %s)", order.Status)
		}

		if in.UsePoints > 0 {
			if int64(in.UsePoints) > order.TotalAmount {
				return newError(KindValidation, "impossible d'utiliser plus de points que le montant de la commande")
			}
			if _, err := w.ledger.Debit(tx, userID, in.UsePoints, order.ID, "Points utilisés au paiement de la commande"); err != nil {
				return err
			}
		}

		charged := order.TotalAmount - int64(in.UsePoints)

		if err := tx.Model(order).Update("status", models.OrderStatusPaid).Error; err != nil {
			return storageError(err)
		}

		payment, err := w.payments.Open(tx, order.ID, method, charged, in.Buyer)
		if err != nil {
			return err
		}

		// 5 % du montant encaissé, tronqués vers zéro. Arithmétique
		// entière uniquement — jamais de flottant sur les montants.
		earned := int(charged * 5 / 100)
		if earned > 0 {
			expiry := time.Now().AddDate(1, 0, 0)
			desc := fmt.Sprintf("Points gagnés au paiement (5%% de %d)", charged)
			if _, err := w.ledger.Credit(tx, userID, earned, models.PointEarned, order.ID, desc, &expiry); err != nil {
				return err
			}
		}

		result = PayResult{Payment: payment, OrderCode: order.OrderCode, EarnedPoints: earned}
		return nil
	})
	if err != nil {
		return nil, asCommerceError(err)
	}

	log.Printf("💳 Commande %s payée : %d encaissés, %d points utilisés, %d points gagnés",
		result.OrderCode, result.Payment.Amount, in.UsePoints, result.EarnedPoints)
	return &result, nil
}

// Cancel annule une commande PENDING. Une commande déjà payée ne s'annule
// pas : il faut passer par Refund, qui reprend aussi les points — autoriser
// l'annulation après paiement laisserait paiement et points orphelins.
func (w *Workflow) Cancel(userID uint, orderCode, reason string) (*models.Order, error) {
	var order *models.Order
	err := w.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = w.loadOrder(tx, userID, orderCode)
		if err != nil {
			return err
		}

		if order.Status != models.OrderStatusPending {
			if order.Status == models.OrderStatusPaid {
				return newError(KindInvalidState, "commande déjà payée : utilisez le remboursement")
			}
			return newError(KindInvalidState, "annulation impossible (statut actuel : %s)", order.Status)
		}

		now := time.Now()
		if err := tx.Model(order).Updates(map[string]any{
			"status":       models.OrderStatusCancelled,
			"cancelled_at": &now,
		}).Error; err != nil {
			return storageError(err)
		}
		order.Status = models.OrderStatusCancelled
		order.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, asCommerceError(err)
	}

	log.Printf("🚫 Commande %s annulée par user %d (%s)", orderCode, userID, reason)
	return order, nil
}

// RefundResult : détail des mouvements de points opérés par un remboursement.
type RefundResult struct {
	Order          *models.Order
	RestoredPoints int // points utilisés rendus à l'utilisateur
	ClawedBack     int // points gagnés repris (plafonnés au solde)
}

// Refund rembourse une commande payée : rend les points utilisés, reprend
// les points gagnés (plafonné au solde courant, voir Ledger.DebitUpTo),
// bascule le paiement en REFUNDED puis la commande. Une seule transaction.
func (w *Workflow) Refund(userID uint, orderCode, reason string) (*RefundResult, error) {
	var result RefundResult
	err := w.db.Transaction(func(tx *gorm.DB) error {
		order, err := w.loadOrder(tx, userID, orderCode)
		if err != nil {
			return err
		}

		if order.Status == models.OrderStatusRefunded {
			return newError(KindInvalidState, "commande déjà remboursée")
		}

		payment, err := w.payments.paidPayment(tx, order.ID)
		if err != nil {
			return err
		}

		// 1. Rendre les points utilisés (écritures USED du paiement,
		// stockées en négatif).
		usedSum, err := w.ledger.sumByType(tx, order.ID, models.PointUsed)
		if err != nil {
			return err
		}
		restored := -usedSum
		if restored > 0 {
			if _, err := w.ledger.Credit(tx, userID, restored, models.PointRefunded, order.ID,
				"Points rendus suite au remboursement de la commande", nil); err != nil {
				return err
			}
		}

		// 2. Reprendre les points gagnés sur cette commande.
		earnedSum, err := w.ledger.sumByType(tx, order.ID, models.PointEarned)
		if err != nil {
			return err
		}
		var clawed int
		if earnedSum > 0 {
			clawed, _, err = w.ledger.DebitUpTo(tx, userID, earnedSum, order.ID,
				"Reprise des points gagnés suite au remboursement")
			if err != nil {
				return err
			}
		}

		if err := w.payments.MarkRefunded(tx, payment.ID, reason); err != nil {
			return err
		}
		if err := tx.Model(order).Update("status", models.OrderStatusRefunded).Error; err != nil {
			return storageError(err)
		}
		order.Status = models.OrderStatusRefunded

		result = RefundResult{Order: order, RestoredPoints: restored, ClawedBack: clawed}
		return nil
	})
	if err != nil {
		return nil, asCommerceError(err)
	}

	log.Printf("💰 Commande %s remboursée : %d points rendus, %d points repris", orderCode, result.RestoredPoints, result.ClawedBack)
	return &result, nil
}

// loadOrder charge une commande par code, restreinte à son propriétaire.
// Une commande d'un autre utilisateur répond introuvable, pas interdit :
// on ne révèle pas l'existence des commandes d'autrui.
func (w *Workflow) loadOrder(tx *gorm.DB, userID uint, orderCode string) (*models.Order, error) {
	var order models.Order
	err := tx.Where("order_code = ? AND user_id = ?", orderCode, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "commande introuvable")
		}
		return nil, storageError(err)
	}
	return &order, nil
}

// asCommerceError laisse passer les erreurs métier et enveloppe tout le
// reste (échec de commit inclus) en erreur de persistance.
func asCommerceError(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return storageError(err)
}
