package event

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/samber/lo"

	"rifa/entity"
	"rifa/pkg/log"
)

func (h Handler) StoreConfirmationArtifactHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"StoreConfirmationArtifactHandler",
		func(ctx context.Context, event *entity.TicketRegistered_v1) error {
			log.FromContext(ctx).WithField("ticket_code", event.Ticket.TicketCode).Info("Storing confirmation artifact")

			path := fmt.Sprintf("confirmations/%s.html", event.Ticket.TicketCode)

			url, err := h.storage.Upload(ctx, renderConfirmation(event.Ticket), "text/html", h.artifactBucket, path)
			if err != nil {
				return fmt.Errorf("failed to store confirmation artifact: %w", err)
			}

			log.FromContext(ctx).WithField("url", url).Info("Confirmation artifact stored")
			return nil
		},
	)
}

func renderConfirmation(ticket entity.Ticket) []byte {
	numbers := strings.Join(lo.Map(ticket.Numbers, func(n int, _ int) string {
		return fmt.Sprintf("%d", n)
	}), ", ")

	var buf bytes.Buffer
	buf.WriteString("<html><body>\n")
	buf.WriteString(fmt.Sprintf("<h1>Ticket %s</h1>\n", ticket.TicketCode))
	buf.WriteString(fmt.Sprintf("<p>%s %s, %s, %s</p>\n", ticket.Name, ticket.Surname, ticket.City, ticket.Country))
	buf.WriteString(fmt.Sprintf("<p>Numbers: %s</p>\n", numbers))
	buf.WriteString(fmt.Sprintf("<p>Paid %.2f via %s, reference %s</p>\n", ticket.TotalValue, ticket.PaymentPlatform, ticket.Reference))
	buf.WriteString("</body></html>\n")
	return buf.Bytes()
}
