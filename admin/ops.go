// Package admin implements the operator-side ticket operations: approval
// toggling and deletion, with their occupancy side effects.
package admin

import (
	"context"
	"fmt"
	"sync"

	"rifa/entity"
	"rifa/pkg/log"
)

type TicketGateway interface {
	FetchTickets(ctx context.Context) ([]entity.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, patch map[string]any) (entity.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error
}

type Occupancy interface {
	RefreshFull(ctx context.Context) ([]entity.Ticket, error)
}

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

type Ops struct {
	gateway   TicketGateway
	occupancy Occupancy
	eventBus  EventBus

	lock    sync.Mutex
	tickets []entity.Ticket
}

func NewOps(gateway TicketGateway, occupancy Occupancy, eventBus EventBus) *Ops {
	if gateway == nil {
		panic("missing ticket gateway")
	}
	if occupancy == nil {
		panic("missing occupancy")
	}
	if eventBus == nil {
		panic("missing event bus")
	}
	return &Ops{gateway: gateway, occupancy: occupancy, eventBus: eventBus}
}

// Tickets returns the full ticket list and refreshes the occupancy cache as a
// side effect, the operator path sees both at once.
func (o *Ops) Tickets(ctx context.Context) ([]entity.Ticket, error) {
	tickets, err := o.occupancy.RefreshFull(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}

	o.lock.Lock()
	o.tickets = tickets
	o.lock.Unlock()
	return tickets, nil
}

// ToggleApproval flips is_approved through a conditional update that returns
// the stored row, and replaces the cached entry with it. Occupancy is not
// touched: approval does not move numbers.
func (o *Ops) ToggleApproval(ctx context.Context, id int64) (entity.Ticket, error) {
	current, err := o.find(ctx, id)
	if err != nil {
		return entity.Ticket{}, err
	}

	updated, err := o.gateway.UpdateTicket(ctx, id, map[string]any{"is_approved": !current.IsApproved})
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("toggling approval of ticket %d: %w", id, err)
	}

	o.lock.Lock()
	for i := range o.tickets {
		if o.tickets[i].ID == id {
			o.tickets[i] = updated
			break
		}
	}
	o.lock.Unlock()

	if err := o.eventBus.Publish(ctx, entity.TicketApprovalChanged_v1{
		Header:     entity.NewEventHeader(),
		TicketID:   id,
		IsApproved: updated.IsApproved,
	}); err != nil {
		log.FromContext(ctx).WithError(err).Error("failed to publish approval change")
	}

	return updated, nil
}

// Remove deletes the ticket and drops it from the local list immediately;
// the occupancy release happens separately when the removal event is handled.
// The list can transiently show the ticket gone before its numbers free up,
// which only matters to subsequent purchases, not this view.
func (o *Ops) Remove(ctx context.Context, id int64) error {
	current, err := o.find(ctx, id)
	if err != nil {
		return err
	}

	if err := o.gateway.DeleteTicket(ctx, id); err != nil {
		return fmt.Errorf("deleting ticket %d: %w", id, err)
	}

	o.lock.Lock()
	for i := range o.tickets {
		if o.tickets[i].ID == id {
			o.tickets = append(o.tickets[:i], o.tickets[i+1:]...)
			break
		}
	}
	o.lock.Unlock()

	if err := o.eventBus.Publish(ctx, entity.TicketRemoved_v1{
		Header:   entity.NewEventHeader(),
		TicketID: id,
		Numbers:  current.Numbers,
	}); err != nil {
		log.FromContext(ctx).WithError(err).Error("failed to publish ticket removal")
	}

	return nil
}

func (o *Ops) find(ctx context.Context, id int64) (entity.Ticket, error) {
	o.lock.Lock()
	for _, t := range o.tickets {
		if t.ID == id {
			o.lock.Unlock()
			return t, nil
		}
	}
	o.lock.Unlock()

	tickets, err := o.gateway.FetchTickets(ctx)
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("fetching tickets: %w", err)
	}

	o.lock.Lock()
	o.tickets = tickets
	o.lock.Unlock()

	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return entity.Ticket{}, entity.ErrNotFound
}
