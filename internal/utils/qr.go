package utils

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// OrderQRDataURI génère le QR du code de commande en base64, prêt à mettre
// dans un <img src="..."> de l'e-mail de confirmation.
func OrderQRDataURI(orderCode string) (string, error) {
	png, err := qrcode.Encode(orderCode, qrcode.Medium, 192)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
