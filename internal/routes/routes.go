package routes

import (
	"playfarm_back_end/internal/handlers"
	"playfarm_back_end/internal/handlers/payement"
	"playfarm_back_end/internal/handlers/user"
	"playfarm_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	auth := user.NewAuthHandler(db)
	orders := user.NewOrderHandler(db)
	points := user.NewPointsHandler(db)
	payments := payement.NewPaymentHandler(db)

	api := r.Group("/api")

	// Auth
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), auth.Login)

	// Tout le reste exige un JWT valide
	authed := api.Group("")
	authed.Use(middleware.AuthRequired(), middleware.APIRateLimit())

	// Commandes
	authed.POST("/orders", orders.Create)
	authed.GET("/orders", orders.List)
	authed.GET("/orders/:code", orders.Get)
	authed.POST("/orders/:code/cancel", orders.Cancel)

	// Paiements
	authed.POST("/orders/:code/pay", payments.Pay)
	authed.POST("/orders/:code/refund", payments.Refund)

	// Points
	authed.GET("/points/balance", points.Balance)
	authed.GET("/points/history", points.History)

	// Uploads
	authed.POST("/uploads", handlers.UploadFile)
}
