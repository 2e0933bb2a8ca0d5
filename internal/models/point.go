package models

import "time"

const (
	PointEarned   = "EARNED"
	PointUsed     = "USED"
	PointRefunded = "REFUNDED"
)

const PointSourceOrder = "ORDER"

// Écriture du journal de points : append-only, jamais modifiée ni supprimée.
// Le montant est signé (négatif pour un débit) et BalanceAfter fige le solde
// juste après l'écriture — rejouer toutes les écritures d'un utilisateur dans
// l'ordre de création doit redonner son solde courant.
type PointTransaction struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"-"`
	Type         string     `gorm:"size:20;not null" json:"type"`
	Amount       int        `gorm:"not null" json:"amount"`
	BalanceAfter int        `gorm:"not null" json:"balanceAfter"`
	SourceType   string     `gorm:"size:20;not null" json:"sourceType"`
	SourceID     uint       `gorm:"index;not null" json:"sourceId"`
	Description  string     `gorm:"size:255" json:"description"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}
