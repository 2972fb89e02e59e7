package command

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"rifa/entity"
	"rifa/pkg/log"
)

func (h Handler) RemoveTicketHandler() cqrs.CommandHandler {
	return cqrs.NewCommandHandler(
		"RemoveTicketHandler",
		func(ctx context.Context, command *entity.RemoveTicket) error {
			log.FromContext(ctx).Infof("RemoveTicketHandler: %d", command.TicketID)

			return h.tickets.Remove(ctx, command.TicketID)
		},
	)
}
