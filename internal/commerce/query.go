package commerce

import (
	"errors"

	"playfarm_back_end/internal/models"

	"gorm.io/gorm"
)

// Queries : lectures seules, sans transaction ni mutation. Assemble une
// commande, ses lignes et son dernier paiement en une réponse présentable.
type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

// OrderView : commande + lignes + dernier paiement (le plus récent gagne).
type OrderView struct {
	Order   *models.Order
	Payment *models.Payment
}

// ListOrders retourne les commandes d'un utilisateur, les plus récentes
// d'abord, chacune avec ses lignes et son dernier paiement.
func (q *Queries) ListOrders(userID uint) ([]OrderView, error) {
	var orders []models.Order
	err := q.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, storageError(err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		payment, err := q.latestPayment(orders[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, OrderView{Order: &orders[i], Payment: payment})
	}
	return views, nil
}

// GetOrder retourne une commande par code, restreinte à son propriétaire.
func (q *Queries) GetOrder(userID uint, orderCode string) (*OrderView, error) {
	var order models.Order
	err := q.db.Preload("Items").
		Where("order_code = ? AND user_id = ?", orderCode, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "commande introuvable")
		}
		return nil, storageError(err)
	}

	payment, err := q.latestPayment(order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderView{Order: &order, Payment: payment}, nil
}

// PointsBalance retourne le solde courant de points d'un utilisateur.
func (q *Queries) PointsBalance(userID uint) (int, error) {
	return currentBalance(q.db, userID)
}

// PointHistory retourne le journal de points paginé, le plus récent d'abord.
func (q *Queries) PointHistory(userID uint, page, limit int) ([]models.PointTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := q.db.Model(&models.PointTransaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}

	var entries []models.PointTransaction
	err := q.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, storageError(err)
	}
	return entries, total, nil
}

func (q *Queries) latestPayment(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	err := q.db.Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageError(err)
	}
	return &payment, nil
}
