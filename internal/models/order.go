package models

import "time"

// Statuts du cycle de vie d'une commande.
// PENDING → PAID → REFUNDED, et PENDING → CANCELLED.
// CANCELLED et REFUNDED sont terminaux.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRefunded  = "REFUNDED"
)

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"-"`
	OrderCode   string      `gorm:"size:64;uniqueIndex;not null" json:"orderId"`
	UserID      uint        `gorm:"index;not null" json:"-"`
	Status      string      `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	TotalAmount int64       `gorm:"not null" json:"totalAmount"`
	Memo        string      `gorm:"type:text" json:"-"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	CancelledAt *time.Time  `json:"cancelledAt,omitempty"`
}

// Ligne de commande : snapshot du produit au moment de l'achat.
// Jamais modifiée après insertion — l'historique survit aux
// changements du catalogue.
type OrderItem struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	OrderID      uint   `gorm:"index;not null" json:"-"`
	ProductID    string `gorm:"size:64;not null" json:"productId"`
	ProductTitle string `gorm:"size:255" json:"title"`
	ProductImage string `gorm:"size:512" json:"image"`
	OptionID     *uint  `json:"optionId,omitempty"`
	OptionName   string `gorm:"size:100" json:"optionName,omitempty"`
	UnitPrice    int64  `gorm:"not null" json:"unitPrice"`
	Quantity     int    `gorm:"not null" json:"quantity"`
}
