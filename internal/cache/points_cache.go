package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"playfarm_back_end/internal/database"
)

const PointsCacheTTL = 2 * time.Minute

// GetCachedPoints lit le solde de points depuis Redis. Le booléen indique
// un hit ; sans Redis configuré c'est toujours un miss.
func GetCachedPoints(userID uint) (int, bool) {
	if database.Redis == nil {
		return 0, false
	}
	ctx := context.Background()
	val, err := database.Redis.Get(ctx, pointsKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	points, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return points, true
}

// SetCachedPoints mémorise le solde après une lecture en base.
func SetCachedPoints(userID uint, points int) {
	if database.Redis == nil {
		return
	}
	ctx := context.Background()
	database.Redis.Set(ctx, pointsKey(userID), strconv.Itoa(points), PointsCacheTTL)
}

// InvalidatePoints invalide le cache d'un utilisateur — appelé après chaque
// mutation du solde (paiement, remboursement).
func InvalidatePoints(userID uint) {
	if database.Redis == nil {
		return
	}
	ctx := context.Background()
	database.Redis.Del(ctx, pointsKey(userID))
}

func pointsKey(userID uint) string {
	return fmt.Sprintf("points:%d", userID)
}
