package user

import (
	"net/http"
	"strconv"

	"playfarm_back_end/internal/cache"
	"playfarm_back_end/internal/commerce"
	"playfarm_back_end/internal/handlers"
	"playfarm_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PointsHandler struct {
	Queries *commerce.Queries
}

func NewPointsHandler(db *gorm.DB) *PointsHandler {
	return &PointsHandler{Queries: commerce.NewQueries(db)}
}

// === GET /api/points/balance ===

// Balance retourne le solde de points, servi depuis Redis quand possible.
func (h *PointsHandler) Balance(c *gin.Context) {
	userID := middleware.UserID(c)

	if points, ok := cache.GetCachedPoints(userID); ok {
		c.JSON(http.StatusOK, gin.H{"points": points, "cached": true})
		return
	}

	points, err := h.Queries.PointsBalance(userID)
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	cache.SetCachedPoints(userID, points)
	c.JSON(http.StatusOK, gin.H{"points": points})
}

// === GET /api/points/history ===

func (h *PointsHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := h.Queries.PointHistory(middleware.UserID(c), page, limit)
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": entries,
		"total":   total,
		"page":    page,
	})
}
