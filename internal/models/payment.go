package models

import "time"

const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

// Paiement d'une commande. Le montant est le montant réellement encaissé :
// total de la commande moins la remise en points.
type Payment struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	OrderID      uint       `gorm:"index;not null" json:"-"`
	PaymentCode  string     `gorm:"size:64;uniqueIndex;not null" json:"paymentId"`
	Method       string     `gorm:"size:30;not null" json:"method"`
	Amount       int64      `gorm:"not null" json:"amount"`
	Status       string     `gorm:"size:20;not null" json:"status"`
	BuyerName    string     `gorm:"size:100" json:"buyerName,omitempty"`
	BuyerPhone   string     `gorm:"size:30" json:"buyerPhone,omitempty"`
	BuyerEmail   string     `gorm:"size:255" json:"buyerEmail,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	RefundedAt   *time.Time `json:"refundedAt,omitempty"`
	RefundReason string     `gorm:"size:500" json:"refundReason,omitempty"`
	CreatedAt    time.Time  `json:"-"`
}
