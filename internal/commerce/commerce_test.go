package commerce

import (
	"fmt"
	"sync/atomic"
	"testing"

	"playfarm_back_end/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB ouvre une base SQLite en mémoire, isolée par nom de test, avec le
// schéma complet. Une seule connexion : les écritures concurrentes passent
// toutes par la même file, comme un pool Postgres saturé.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.PointTransaction{},
	))
	return db
}

var userSeq atomic.Uint64

func newUser(t *testing.T, db *gorm.DB, points int) models.User {
	t.Helper()
	user := models.User{
		Email:    fmt.Sprintf("user%d@playfarm.kr", userSeq.Add(1)),
		Password: "x",
		Name:     "Testeur",
		Points:   points,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// journalBalance rejoue le journal d'un utilisateur : la somme des montants
// doit toujours redonner le solde stocké.
func journalBalance(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var sum int64
	require.NoError(t, db.Model(&models.PointTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error)
	return int(sum)
}

func storedBalance(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.Select("points").First(&user, userID).Error)
	return user.Points
}

func requireJournalConsistent(t *testing.T, db *gorm.DB, userID uint, initial int) {
	t.Helper()
	require.Equal(t, storedBalance(t, db, userID), initial+journalBalance(t, db, userID),
		"rejouer le journal doit redonner le solde stocké")
}
