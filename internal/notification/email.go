// Package notification sends the customer and merchant order emails over
// SMTP. Delivery is best-effort; callers log failures and move on.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lunetoptics/lunet-backend/internal/config"
	"github.com/lunetoptics/lunet-backend/internal/order"
)

type EmailSender struct {
	host          string
	port          string
	user          string
	password      string
	from          string
	merchantEmail string
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{
		host:          cfg.Host,
		port:          cfg.Port,
		user:          cfg.User,
		password:      cfg.Password,
		from:          cfg.From,
		merchantEmail: cfg.MerchantEmail,
	}
}

// SendOrderEmails dispatches the customer confirmation and the merchant
// notification for one order. Both are attempted; the first failure is
// returned.
func (s *EmailSender) SendOrderEmails(ctx context.Context, o *order.Order) error {
	if s.host == "" {
		log.Warn().Int64("order_id", o.ID).Msg("notification: SMTP not configured, skipping emails")
		return nil
	}

	var firstErr error
	if o.CustomerEmail != "" {
		if err := s.send(o.CustomerEmail, customerSubject(o), customerBody(o)); err != nil {
			firstErr = err
			log.Error().Err(err).Int64("order_id", o.ID).Msg("notification: failed to send customer email")
		}
	}
	if s.merchantEmail != "" {
		if err := s.send(s.merchantEmail, merchantSubject(o), merchantBody(o)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Error().Err(err).Int64("order_id", o.ID).Msg("notification: failed to send merchant email")
		}
	}
	return firstErr
}

func (s *EmailSender) send(to, subject, body string) error {
	msg := []byte("Subject: " + subject + "\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n" +
		body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func customerSubject(o *order.Order) string {
	return fmt.Sprintf("Confirmare comandă #%d - Lunet Optics", o.ID)
}

func merchantSubject(o *order.Order) string {
	return fmt.Sprintf("Comandă nouă #%d (%s)", o.ID, o.PaymentMethod)
}

func customerBody(o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Mulțumim pentru comandă, %s!</h1>", o.CustomerName)
	fmt.Fprintf(&b, "<p>Comanda #%d a fost înregistrată.</p>", o.ID)
	b.WriteString(itemsTable(o))
	if o.PaymentMethod == order.PaymentRamburs {
		b.WriteString("<p>Plata se face la livrare (ramburs).</p>")
	} else {
		b.WriteString("<p>Plata cu cardul a fost confirmată.</p>")
	}
	return b.String()
}

func merchantBody(o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>Comandă nouă #%d</h1>", o.ID)
	fmt.Fprintf(&b, "<p>%s — %s — %s</p>", o.CustomerName, o.CustomerPhone, o.CustomerEmail)
	fmt.Fprintf(&b, "<p>%s, %s, %s</p>", o.ShippingAddress, o.ShippingCity, o.ShippingCounty)
	b.WriteString(itemsTable(o))
	return b.String()
}

func itemsTable(o *order.Order) string {
	var b strings.Builder
	b.WriteString("<table><tr><th>Produs</th><th>Cant.</th><th>Preț</th></tr>")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s lei</td></tr>",
			it.Name, it.Quantity, it.UnitPrice.StringFixed(2))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>Subtotal: %s lei<br>Transport (%s): %s lei<br>",
		o.Subtotal.StringFixed(2), o.ShippingMethod, o.ShippingCost.StringFixed(2))
	if o.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Reducere (%s): -%s lei<br>", o.DiscountCode, o.DiscountAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "<b>Total: %s lei</b></p>", o.TotalAmount.StringFixed(2))
	return b.String()
}
