package handlers

import (
	"log"
	"net/http"

	"playfarm_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// === POST /api/uploads ===

// UploadFile reçoit un fichier multipart et le pousse vers MinIO.
// Utilisé par le front pour les justificatifs et avis avec photo.
func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun fichier reçu"})
		return
	}

	url, err := services.UploadFile(fileHeader)
	if err != nil {
		log.Println("❌ Erreur upload MinIO:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload fichier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "✅ Fichier uploadé",
		"url":     url,
	})
}
