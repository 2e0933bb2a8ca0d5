package commerce

import (
	"errors"
	"log"
	"time"

	"playfarm_back_end/internal/models"

	"gorm.io/gorm"
)

// Ledger tient le solde de points d'un utilisateur et son journal append-only.
// Chaque mutation du solde écrit exactement une ligne point_transactions avec
// le solde résultant, dans la transaction SQL ouverte par l'appelant — jamais
// en dehors. Les mutations passent par des UPDATE conditionnels atomiques
// (compare-and-swap sur la colonne points) : deux débits concurrents ne
// peuvent pas se perdre l'un l'autre.
type Ledger struct{}

// Credit ajoute des points et journalise une écriture du type donné
// (EARNED ou REFUNDED). Retourne le nouveau solde.
func (Ledger) Credit(tx *gorm.DB, userID uint, amount int, txnType string, orderID uint, description string, expiresAt *time.Time) (int, error) {
	if amount <= 0 {
		return 0, newError(KindValidation, "montant de crédit invalide : %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return 0, storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, newError(KindNotFound, "utilisateur %d introuvable", userID)
	}

	balance, err := currentBalance(tx, userID)
	if err != nil {
		return 0, err
	}

	entry := models.PointTransaction{
		UserID:       userID,
		Type:         txnType,
		Amount:       amount,
		BalanceAfter: balance,
		SourceType:   models.PointSourceOrder,
		SourceID:     orderID,
		Description:  description,
		ExpiresAt:    expiresAt,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, storageError(err)
	}
	return balance, nil
}

// Debit retire des points et journalise une écriture USED (montant négatif).
// Échoue si le solde est insuffisant : l'UPDATE est gardé par points >= ?,
// le solde ne peut jamais devenir négatif.
func (l Ledger) Debit(tx *gorm.DB, userID uint, amount int, orderID uint, description string) (int, error) {
	if amount <= 0 {
		return 0, newError(KindValidation, "montant de débit invalide : %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, amount).
		UpdateColumn("points", gorm.Expr("points - ?", amount))
	if res.Error != nil {
		return 0, storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		// Solde insuffisant, ou utilisateur inexistant — on distingue.
		balance, err := currentBalance(tx, userID)
		if err != nil {
			return 0, err
		}
		return 0, newError(KindInsufficientFunds, "solde de points insuffisant (solde : %dP, demandé : %dP)", balance, amount)
	}

	balance, err := currentBalance(tx, userID)
	if err != nil {
		return 0, err
	}

	entry := models.PointTransaction{
		UserID:       userID,
		Type:         models.PointUsed,
		Amount:       -amount,
		BalanceAfter: balance,
		SourceType:   models.PointSourceOrder,
		SourceID:     orderID,
		Description:  description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, storageError(err)
	}
	return balance, nil
}

// DebitUpTo retire au plus amount points, plafonné au solde courant : c'est
// le chemin de reprise des points gagnés lors d'un remboursement, où
// l'utilisateur peut déjà avoir dépensé ces points ailleurs. On écrase à
// zéro plutôt que de laisser le solde passer en négatif, et le manque est
// journalisé. L'écriture USED porte le montant réellement débité pour que
// rejouer le journal redonne toujours le solde.
func (l Ledger) DebitUpTo(tx *gorm.DB, userID uint, amount int, orderID uint, description string) (debited int, balance int, err error) {
	if amount <= 0 {
		return 0, 0, newError(KindValidation, "montant de débit invalide : %d", amount)
	}

	// Boucle CAS : si le solde bouge entre la lecture et l'UPDATE
	// conditionnel, on relit et on retente.
	for attempt := 0; attempt < 5; attempt++ {
		current, cerr := currentBalance(tx, userID)
		if cerr != nil {
			return 0, 0, cerr
		}

		debited = amount
		if current < amount {
			debited = current
			log.Printf("⚠️ Reprise de points partielle pour user %d : %dP demandés, %dP disponibles (manque %dP)",
				userID, amount, current, amount-current)
		}
		if debited == 0 {
			return 0, current, nil
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", userID, debited).
			UpdateColumn("points", gorm.Expr("points - ?", debited))
		if res.Error != nil {
			return 0, 0, storageError(res.Error)
		}
		if res.RowsAffected == 0 {
			continue // le solde a changé sous nos pieds
		}

		balance, err = currentBalance(tx, userID)
		if err != nil {
			return 0, 0, err
		}

		entry := models.PointTransaction{
			UserID:       userID,
			Type:         models.PointUsed,
			Amount:       -debited,
			BalanceAfter: balance,
			SourceType:   models.PointSourceOrder,
			SourceID:     orderID,
			Description:  description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return 0, 0, storageError(err)
		}
		return debited, balance, nil
	}
	return 0, 0, newError(KindStorage, "débit plafonné impossible pour user %d : solde trop disputé", userID)
}

// sumByType additionne les écritures d'un type donné pour une commande.
func (Ledger) sumByType(tx *gorm.DB, orderID uint, txnType string) (int, error) {
	var total int64
	err := tx.Model(&models.PointTransaction{}).
		Where("source_type = ? AND source_id = ? AND type = ?", models.PointSourceOrder, orderID, txnType).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, storageError(err)
	}
	return int(total), nil
}

func currentBalance(tx *gorm.DB, userID uint) (int, error) {
	var user models.User
	if err := tx.Select("points").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, newError(KindNotFound, "utilisateur %d introuvable", userID)
		}
		return 0, storageError(err)
	}
	return user.Points, nil
}
