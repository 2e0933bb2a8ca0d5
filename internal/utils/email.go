package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"playfarm_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendOrderPaidEmail envoie la confirmation de paiement d'une commande.
// Sans SMTP configuré on ne fait rien : l'e-mail n'est jamais bloquant.
func SendOrderPaidEmail(to string, order *models.Order, payment *models.Payment, earnedPoints int) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" || to == "" {
		return nil
	}

	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@playfarm.kr"
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Confirmation de votre commande %s", order.OrderCode))
	msg.SetBodyString(mail.TypeTextHTML, orderPaidHTML(order, payment, earnedPoints))

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail de confirmation à", to)
	return client.DialAndSend(msg)
}

func orderPaidHTML(order *models.Order, payment *models.Payment, earnedPoints int) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%d</td>
				<td>%d</td>
			</tr>`, item.ProductTitle, item.Quantity, item.UnitPrice, item.UnitPrice*int64(item.Quantity))
	}

	qrHTML := ""
	if qr, err := OrderQRDataURI(order.OrderCode); err == nil {
		qrHTML = fmt.Sprintf(`<p><img src="%s" alt="%s"/></p>`, qr, order.OrderCode)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body>
	<h2>Merci pour votre commande !</h2>
	<p>Commande <strong>%s</strong> — paiement <strong>%s</strong></p>
	<table border="1" cellpadding="6" cellspacing="0">
		<tr><th>Article</th><th>Qté</th><th>Prix unitaire</th><th>Sous-total</th></tr>
		%s
	</table>
	<p>Montant encaissé : <strong>%d</strong></p>
	<p>Points gagnés : <strong>%dP</strong></p>
	%s
</body>
</html>`, order.OrderCode, payment.PaymentCode, itemsHTML, payment.Amount, earnedPoints, qrHTML)
}
