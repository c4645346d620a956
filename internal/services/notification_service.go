package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/stayextras/upsell-service/internal/config"
	"github.com/stayextras/upsell-service/internal/constants"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/utils"
)

// OrderNotifier delivers best-effort order lifecycle mail to hosts.
// Failures are logged, never returned; notifications must not block or
// fail the money path.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, host *models.Profile, property *models.Property, order *models.Order)
	NotifyOrderCancelled(ctx context.Context, host *models.Profile, order *models.Order)
}

const newOrderEmailHTML = `
<html>
  <body style="font-family: sans-serif;">
    <h2>New guest order</h2>
    <p>Hi %s,</p>
    <p><strong>%s</strong> ordered extras for their stay at <strong>%s</strong>
    (arrival %s).</p>
    <p>Total: <strong>%.2f&nbsp;&euro;</strong></p>
    <p>The payment is authorized and waiting for your approval in the dashboard.
    Approve to capture it, or reject to release the hold.</p>
  </body>
</html>`

const orderCancelledEmailHTML = `
<html>
  <body style="font-family: sans-serif;">
    <h2>Order cancelled</h2>
    <p>Hi %s,</p>
    <p>The pending order from <strong>%s</strong> (%.2f&nbsp;&euro;) was not
    approved before its payment authorization expired and has been cancelled.
    No money moved.</p>
  </body>
</html>`

type emailNotifier struct {
	cfg            *config.Config
	sendgridClient *sendgrid.Client
}

func NewEmailNotifier(cfg *config.Config) OrderNotifier {
	return &emailNotifier{
		cfg:            cfg,
		sendgridClient: sendgrid.NewSendClient(cfg.SendgridAPIKey),
	}
}

func (n *emailNotifier) NotifyNewOrder(ctx context.Context, host *models.Profile, property *models.Property, order *models.Order) {
	subject := fmt.Sprintf(constants.EmailSubjectNewOrder, property.Name)

	total := float64(order.TotalAmountCents) / 100.0
	plain := fmt.Sprintf(
		"Hi %s,\n\n%s ordered extras for their stay at %s (arrival %s).\nTotal: %.2f EUR\n\nThe payment is authorized and waiting for your approval in the dashboard.",
		host.FullName, order.GuestName, property.Name, order.ArrivalDate.Format("January 2, 2006"), total,
	)
	html := fmt.Sprintf(newOrderEmailHTML,
		host.FullName, order.GuestName, property.Name, order.ArrivalDate.Format("January 2, 2006"), total,
	)

	n.send(host, subject, plain, html)
}

func (n *emailNotifier) NotifyOrderCancelled(ctx context.Context, host *models.Profile, order *models.Order) {
	total := float64(order.TotalAmountCents) / 100.0
	plain := fmt.Sprintf(
		"Hi %s,\n\nThe pending order from %s (%.2f EUR) was not approved before its payment authorization expired and has been cancelled. No money moved.",
		host.FullName, order.GuestName, total,
	)
	html := fmt.Sprintf(orderCancelledEmailHTML, host.FullName, order.GuestName, total)

	n.send(host, constants.EmailSubjectOrderCancelled, plain, html)
}

func (n *emailNotifier) send(host *models.Profile, subject, plain, html string) {
	fromEmail := n.cfg.SendgridFrom
	if fromEmail == "" {
		fromEmail = constants.NotificationFromEmail
	}
	from := mail.NewEmail(constants.NotificationFromName, fromEmail)
	to := mail.NewEmail(host.FullName, host.Email)

	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	if n.cfg.SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	if _, err := n.sendgridClient.Send(msg); err != nil {
		utils.Logger.WithError(err).Error("Failed to send order notification email")
	}
}
