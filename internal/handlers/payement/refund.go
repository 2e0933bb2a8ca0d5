package payement

import (
	"net/http"

	"playfarm_back_end/internal/cache"
	"playfarm_back_end/internal/handlers"
	"playfarm_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

// === POST /api/orders/:code/refund ===

// Refund rembourse une commande payée : points utilisés rendus, points
// gagnés repris, paiement et commande basculés en REFUNDED, d'un bloc.
func (h *PaymentHandler) Refund(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input) // raison facultative

	userID := middleware.UserID(c)

	result, err := h.Workflow.Refund(userID, c.Param("code"), input.Reason)
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	cache.InvalidatePoints(userID)

	c.JSON(http.StatusOK, gin.H{
		"message":        "💰 Commande remboursée",
		"order":          result.Order,
		"restoredPoints": result.RestoredPoints,
		"clawedBack":     result.ClawedBack,
	})
}
