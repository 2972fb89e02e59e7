package entity

type RemoveTicket struct {
	Header   EventHeader `json:"header"`
	TicketID int64       `json:"ticket_id"`
}
