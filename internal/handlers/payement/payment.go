package payement

import (
	"log"
	"net/http"

	"playfarm_back_end/internal/cache"
	"playfarm_back_end/internal/commerce"
	"playfarm_back_end/internal/handlers"
	"playfarm_back_end/internal/middleware"
	"playfarm_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	Workflow *commerce.Workflow
	Queries  *commerce.Queries
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{
		Workflow: commerce.NewWorkflow(db),
		Queries:  commerce.NewQueries(db),
	}
}

// === POST /api/orders/:code/pay ===

// Pay encaisse une commande PENDING. Les points utilisés sont débités et le
// paiement enregistré dans la même transaction ; l'e-mail de confirmation
// part ensuite en tâche de fond, sans jamais bloquer la réponse.
func (h *PaymentHandler) Pay(c *gin.Context) {
	var input struct {
		Method     string `json:"method"`
		UsePoints  int    `json:"usePoints"`
		BuyerName  string `json:"buyerName"`
		BuyerPhone string `json:"buyerPhone"`
		BuyerEmail string `json:"buyerEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.UserID(c)
	orderCode := c.Param("code")

	result, err := h.Workflow.Pay(userID, orderCode, commerce.PayInput{
		Method:    input.Method,
		UsePoints: input.UsePoints,
		Buyer: commerce.BuyerInfo{
			Name:  input.BuyerName,
			Phone: input.BuyerPhone,
			Email: input.BuyerEmail,
		},
	})
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	// le solde a bougé (débit et/ou crédit)
	cache.InvalidatePoints(userID)

	go h.sendConfirmation(userID, orderCode, input.BuyerEmail, c.GetString("email"), result.EarnedPoints)

	c.JSON(http.StatusOK, gin.H{
		"message":      "💳 Paiement effectué",
		"orderCode":    result.OrderCode,
		"payment":      result.Payment,
		"earnedPoints": result.EarnedPoints,
	})
}

func (h *PaymentHandler) sendConfirmation(userID uint, orderCode, buyerEmail, accountEmail string, earned int) {
	to := buyerEmail
	if to == "" {
		to = accountEmail
	}

	view, err := h.Queries.GetOrder(userID, orderCode)
	if err != nil || view.Payment == nil {
		log.Println("⚠️ Confirmation non envoyée, commande illisible:", err)
		return
	}
	if err := utils.SendOrderPaidEmail(to, view.Order, view.Payment, earned); err != nil {
		log.Println("⚠️ Échec envoi e-mail de confirmation:", err)
	}
}
