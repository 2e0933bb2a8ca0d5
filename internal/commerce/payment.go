package commerce

import (
	"errors"
	"fmt"
	"time"

	"playfarm_back_end/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BuyerInfo : coordonnées de l'acheteur figées au moment du paiement.
type BuyerInfo struct {
	Name  string `json:"buyerName"`
	Phone string `json:"buyerPhone"`
	Email string `json:"buyerEmail"`
}

// PaymentRecord gère les paiements rattachés aux commandes. Au plus un
// paiement PAID par commande : Open vérifie avant d'insérer.
type PaymentRecord struct{}

// Open enregistre un paiement directement en statut PAID — l'encaissement
// externe est supposé déjà réussi, il n'y a pas d'étape de capture séparée.
func (PaymentRecord) Open(tx *gorm.DB, orderID uint, method string, amount int64, buyer BuyerInfo) (*models.Payment, error) {
	var count int64
	err := tx.Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPaid).
		Count(&count).Error
	if err != nil {
		return nil, storageError(err)
	}
	if count > 0 {
		return nil, newError(KindConflict, "un paiement existe déjà pour cette commande")
	}

	now := time.Now()
	payment := models.Payment{
		OrderID:     orderID,
		PaymentCode: NewPaymentCode(),
		Method:      method,
		Amount:      amount,
		Status:      models.PaymentStatusPaid,
		BuyerName:   buyer.Name,
		BuyerPhone:  buyer.Phone,
		BuyerEmail:  buyer.Email,
		PaidAt:      &now,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, storageError(err)
	}
	return &payment, nil
}

// MarkRefunded bascule un paiement en REFUNDED avec horodatage et motif.
func (PaymentRecord) MarkRefunded(tx *gorm.DB, paymentID uint, reason string) error {
	now := time.Now()
	res := tx.Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]any{
			"status":        models.PaymentStatusRefunded,
			"refunded_at":   &now,
			"refund_reason": reason,
		})
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindNotFound, "paiement %d introuvable", paymentID)
	}
	return nil
}

// paidPayment retourne le paiement PAID le plus récent d'une commande.
func (PaymentRecord) paidPayment(tx *gorm.DB, orderID uint) (*models.Payment, error) {
	var payment models.Payment
	err := tx.Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPaid).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindInvalidState, "aucun paiement à rembourser pour cette commande")
		}
		return nil, storageError(err)
	}
	return &payment, nil
}

// NewOrderCode génère un code de commande externe, unique et partageable,
// au format ORD-<horodatage>-<8 hex>. Même format que l'historique.
func NewOrderCode() string {
	return newCode("ORD")
}

// NewPaymentCode : idem pour les paiements (PAY-...).
func NewPaymentCode() string {
	return newCode("PAY")
}

func newCode(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%d-%x", prefix, time.Now().UnixMilli(), id[:4])
}
