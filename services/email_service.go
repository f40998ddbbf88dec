package services

import (
	"fmt"
	"haya_server/structs"
	"haya_server/structs/tables"
	"strings"
	"sync"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

var (
	emailClient     *resend.Client
	emailClientOnce = sync.Once{}
)

type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *resend.Client
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config) *EmailService {
	return &EmailService{
		logger: logger,
		cfg:    cfg,
		client: getEmailClient(cfg.Email.APIKey),
	}
}

func getEmailClient(apiKey string) *resend.Client {
	emailClientOnce.Do(func() {
		emailClient = resend.NewClient(apiKey)
	})
	return emailClient
}

func (es *EmailService) SendEmail(to []string, subject string, body string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", es.cfg.Email.FromName, es.cfg.Email.FromEmail),
		To:      to,
		Html:    body,
		Subject: subject,
	}

	_, err := es.client.Emails.Send(params)
	if err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", to))
		return err
	}

	return nil
}

// SendOrderConfirmation notifies the shop about a freshly placed order.
// Checkout collects no customer email address, so the shop inbox is the only
// recipient. Failures are logged and swallowed: the order is already
// committed and email must never undo it.
func (es *EmailService) SendOrderConfirmation(order *tables.Order, customerName string) {
	if !es.cfg.Email.Enabled || es.cfg.Email.NotifyEmail == "" {
		return
	}

	var rows strings.Builder
	for _, line := range order.Lines {
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td>%s (%s)</td>
				<td>%s / %s</td>
				<td>%d</td>
				<td>%s</td>
				<td>%s</td>
			</tr>`,
			line.ProductName, line.ProductCode,
			line.Color, line.Size,
			line.Quantity,
			formatCents(line.UnitPrice),
			formatCents(line.LineTotal)))
	}

	body := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #2c3e50; color: white; padding: 20px; text-align: center; }
				table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
				th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
				.total { font-weight: bold; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>New order %s</h1>
				</div>
				<p>Customer: %s</p>
				<table>
					<tr><th>Product</th><th>Variant</th><th>Qty</th><th>Unit price</th><th>Line total</th></tr>
					%s
				</table>
				<p class="total">Total: %s</p>
			</div>
		</body>
		</html>`,
		order.OrderNumber, customerName, rows.String(), formatCents(order.TotalAmount))

	subject := fmt.Sprintf("New order %s", order.OrderNumber)
	if err := es.SendEmail([]string{es.cfg.Email.NotifyEmail}, subject, body); err != nil {
		es.logger.Error("Order confirmation email failed",
			gecho.Field("order_number", order.OrderNumber),
			gecho.Field("error", err))
	}
}

func formatCents(cents uint64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
