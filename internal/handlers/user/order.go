package user

import (
	"net/http"

	"playfarm_back_end/internal/commerce"
	"playfarm_back_end/internal/handlers"
	"playfarm_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderHandler struct {
	Workflow *commerce.Workflow
	Queries  *commerce.Queries
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{
		Workflow: commerce.NewWorkflow(db),
		Queries:  commerce.NewQueries(db),
	}
}

type orderLineInput struct {
	ProductID  string `json:"productId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Image      string `json:"image"`
	OptionID   *uint  `json:"optionId"`
	OptionName string `json:"optionName"`
	UnitPrice  int64  `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
}

// === POST /api/orders ===

// Create enregistre une commande PENDING avec le snapshot des articles tel
// que le front l'a affiché. Le total déclaré sert de garde-fou.
func (h *OrderHandler) Create(c *gin.Context) {
	var input struct {
		Items       []orderLineInput `json:"items" binding:"required"`
		TotalAmount int64            `json:"totalAmount"`
		Memo        string           `json:"memo"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]commerce.LineInput, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, commerce.LineInput{
			ProductID:  item.ProductID,
			Title:      item.Title,
			Image:      item.Image,
			OptionID:   item.OptionID,
			OptionName: item.OptionName,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.Workflow.Create(middleware.UserID(c), lines, input.TotalAmount, input.Memo)
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "✅ Commande créée",
		"orderCode": order.OrderCode,
		"order":     order,
	})
}

// === GET /api/orders ===

func (h *OrderHandler) List(c *gin.Context) {
	views, err := h.Queries.ListOrders(middleware.UserID(c))
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	out := make([]gin.H, 0, len(views))
	for _, v := range views {
		out = append(out, orderJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// === GET /api/orders/:code ===

func (h *OrderHandler) Get(c *gin.Context) {
	view, err := h.Queries.GetOrder(middleware.UserID(c), c.Param("code"))
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderJSON(*view))
}

// === POST /api/orders/:code/cancel ===

func (h *OrderHandler) Cancel(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input) // raison facultative

	order, err := h.Workflow.Cancel(middleware.UserID(c), c.Param("code"), input.Reason)
	if err != nil {
		handlers.HTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "🚫 Commande annulée",
		"order":   order,
	})
}

func orderJSON(v commerce.OrderView) gin.H {
	out := gin.H{"order": v.Order}
	if v.Payment != nil {
		out["payment"] = v.Payment
	}
	return out
}
