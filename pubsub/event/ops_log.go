package event

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"rifa/entity"
	"rifa/pkg/log"
)

// The handlers below exist for the operator audit trail only.

func (h Handler) LogRegisteredTicketHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"LogRegisteredTicketHandler",
		func(ctx context.Context, event *entity.TicketRegistered_v1) error {
			log.FromContext(ctx).WithFields(logrus.Fields{
				"ticket_code": event.Ticket.TicketCode,
				"numbers":     event.Ticket.Numbers,
				"platform":    event.Ticket.PaymentPlatform,
				"total_value": event.Ticket.TotalValue,
			}).Info("Ticket registered")
			return nil
		},
	)
}

func (h Handler) LogApprovalChangeHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"LogApprovalChangeHandler",
		func(ctx context.Context, event *entity.TicketApprovalChanged_v1) error {
			log.FromContext(ctx).WithFields(logrus.Fields{
				"ticket_id":   event.TicketID,
				"is_approved": event.IsApproved,
			}).Info("Ticket approval changed")
			return nil
		},
	)
}

func (h Handler) LogExpiredPurchaseHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"LogExpiredPurchaseHandler",
		func(ctx context.Context, event *entity.PurchaseExpired_v1) error {
			log.FromContext(ctx).WithFields(logrus.Fields{
				"purchase_id": event.PurchaseID,
				"numbers":     event.Numbers,
			}).Info("Purchase expired before payment")
			return nil
		},
	)
}
