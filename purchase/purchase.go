// Package purchase drives the ticket purchase flow as an explicit state
// machine: package choice, number selection, buyer registration, payment
// platform choice, payment-reference capture, confirmation.
package purchase

import (
	"time"

	"rifa/entity"
)

type State string

const (
	StateChoosingPackage     State = "choosing_package"
	StateChoosingNumbers     State = "choosing_numbers"
	StateCollectingBuyerInfo State = "collecting_buyer_info"
	StateChoosingPlatform    State = "choosing_platform"
	StateAwaitingReference   State = "awaiting_reference"
	StatePersisting          State = "persisting"
	StateConfirmed           State = "confirmed"
)

// Purchase is the transient, per-session workflow state. Nothing in it is
// durable until the final payment step persists a ticket.
type Purchase struct {
	ID    string
	state State

	pkg     *entity.Package
	numbers []int
	buyer   *entity.BuyerInfo

	ticketCode string

	platform        entity.PaymentPlatform
	dueAmount       float64
	paymentDeadline time.Time

	confirmed *entity.Ticket

	lastTouched time.Time
}

// Status is the externally visible snapshot of a purchase.
type Status struct {
	ID              string                 `json:"id"`
	State           State                  `json:"state"`
	Package         *entity.Package        `json:"package,omitempty"`
	Numbers         []int                  `json:"numbers"`
	RequiredNumbers int                    `json:"required_numbers"`
	Buyer           *entity.BuyerInfo      `json:"buyer,omitempty"`
	TicketCode      string                 `json:"ticket_code,omitempty"`
	Platform        entity.PaymentPlatform `json:"platform,omitempty"`
	DueAmount       float64                `json:"due_amount,omitempty"`
	PaymentDeadline *time.Time             `json:"payment_deadline,omitempty"`
	Ticket          *entity.Ticket         `json:"ticket,omitempty"`
}

func (p *Purchase) snapshot() Status {
	status := Status{
		ID:      p.ID,
		State:   p.state,
		Numbers: append([]int(nil), p.numbers...),
	}
	if p.pkg != nil {
		pkg := *p.pkg
		status.Package = &pkg
		status.RequiredNumbers = pkg.Numbers
	}
	if p.buyer != nil {
		buyer := *p.buyer
		status.Buyer = &buyer
		status.TicketCode = p.ticketCode
	}
	if p.state == StateAwaitingReference {
		status.Platform = p.platform
		status.DueAmount = p.dueAmount
		deadline := p.paymentDeadline
		status.PaymentDeadline = &deadline
	}
	if p.confirmed != nil {
		ticket := *p.confirmed
		status.Ticket = &ticket
	}
	return status
}
