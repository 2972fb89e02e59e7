package entity

import "time"

type PaymentPlatform string

const (
	PlatformNequi   PaymentPlatform = "nequi"
	PlatformBinance PaymentPlatform = "binance"
)

type PrizeType string

const (
	PrizeTypeCifras PrizeType = "cifras"
	PrizeTypeSeries PrizeType = "series"
)

type Ticket struct {
	ID              int64           `json:"id,omitempty"`
	Name            string          `json:"nombre"`
	Surname         string          `json:"apellido"`
	City            string          `json:"ciudad"`
	Country         string          `json:"pais"`
	Whatsapp        string          `json:"whatsapp"`
	Numbers         []int           `json:"numbers"`
	TotalValue      float64         `json:"total_value"`
	PaymentPlatform PaymentPlatform `json:"payment_platform"`
	Reference       string          `json:"reference"`
	TicketCode      string          `json:"ticket_code"`
	IsApproved      bool            `json:"is_approved"`
	PrizeType       PrizeType       `json:"prize_type"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}

// BuyerInfo is the personal data collected during the purchase flow.
type BuyerInfo struct {
	Name      string    `json:"nombre"`
	Surname   string    `json:"apellido"`
	City      string    `json:"ciudad"`
	Country   string    `json:"pais"`
	Whatsapp  string    `json:"whatsapp"`
	PrizeType PrizeType `json:"prize_type"`
}

type Package struct {
	ID       int64   `json:"id"`
	Label    string  `json:"label"`
	Numbers  int     `json:"numbers"`
	PriceCOP float64 `json:"price_cop"`
	PriceUSD float64 `json:"price_usd"`
}
