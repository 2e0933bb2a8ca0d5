package handlers

import (
	"log"
	"net/http"

	"playfarm_back_end/internal/commerce"

	"github.com/gin-gonic/gin"
)

// HTTPError traduit une erreur métier en réponse JSON. Les erreurs de
// persistance ne fuient jamais leur détail vers le client.
func HTTPError(c *gin.Context, err error) {
	kind := commerce.KindOf(err)
	switch kind {
	case commerce.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": commerce.MessageOf(err)})
	case commerce.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": commerce.MessageOf(err)})
	case commerce.KindValidation, commerce.KindInvalidState, commerce.KindInsufficientFunds:
		c.JSON(http.StatusBadRequest, gin.H{"error": commerce.MessageOf(err)})
	default:
		log.Println("❌ Erreur interne:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne du serveur"})
	}
}
