package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"rifa/entity"
	"rifa/pkg/log"
)

func (h Handler) ReleaseNumbersHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ReleaseNumbersHandler",
		func(ctx context.Context, event *entity.TicketRemoved_v1) error {
			log.FromContext(ctx).WithField("ticket_id", event.TicketID).Infof("Releasing numbers %v", event.Numbers)

			if err := h.occupancy.Release(ctx, event.Numbers); err != nil {
				return fmt.Errorf("failed to release numbers of ticket %d: %w", event.TicketID, err)
			}
			return nil
		},
	)
}
