package entity

// TicketRegistered_v1 is published after a ticket was durably stored by the
// persistence service.
type TicketRegistered_v1 struct {
	Header EventHeader `json:"header"`
	Ticket Ticket      `json:"ticket"`
}

// TicketRemoved_v1 is published after an operator deleted a ticket. Numbers
// carries the released raffle numbers for logging; the occupancy cache is
// reconciled with a full refresh, not by subtracting them.
type TicketRemoved_v1 struct {
	Header   EventHeader `json:"header"`
	TicketID int64       `json:"ticket_id"`
	Numbers  []int       `json:"numbers"`
}

type TicketApprovalChanged_v1 struct {
	Header     EventHeader `json:"header"`
	TicketID   int64       `json:"ticket_id"`
	IsApproved bool        `json:"is_approved"`
}

// PurchaseExpired_v1 is published when the payment window of an in-progress
// purchase ran out before a reference was submitted. No ticket was stored.
type PurchaseExpired_v1 struct {
	Header     EventHeader `json:"header"`
	PurchaseID string      `json:"purchase_id"`
	Numbers    []int       `json:"numbers"`
}
