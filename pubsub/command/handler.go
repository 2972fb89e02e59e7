package command

import (
	"context"
)

type TicketRemover interface {
	Remove(ctx context.Context, id int64) error
}

type Handler struct {
	tickets TicketRemover
}

func NewHandler(tickets TicketRemover) Handler {
	if tickets == nil {
		panic("missing tickets")
	}

	return Handler{tickets: tickets}
}
