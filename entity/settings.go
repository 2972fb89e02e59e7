package entity

// Settings is a singleton row (id=1) owned by the persistence service.
type Settings struct {
	ID             int64          `json:"id"`
	RaffleDate     string         `json:"raffle_date"`
	RaffleSize     int            `json:"raffle_size"`
	USDToCOPRate   float64        `json:"usd_to_cop_rate"`
	RaffleInfo     RaffleInfo     `json:"raffle_info"`
	PaymentOptions PaymentOptions `json:"payment_options"`
	LogoURL        string         `json:"logo_url,omitempty"`
	WinningNumbers WinningNumbers `json:"winning_numbers"`
	Colors         AppColors      `json:"colors"`
}

type RaffleInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PaymentOption struct {
	QRURL   string `json:"qr_url"`
	Enabled bool   `json:"enabled"`
}

type PaymentOptions struct {
	Nequi   PaymentOption `json:"nequi"`
	Binance PaymentOption `json:"binance"`
}

func (o PaymentOptions) For(platform PaymentPlatform) (PaymentOption, bool) {
	switch platform {
	case PlatformNequi:
		return o.Nequi, true
	case PlatformBinance:
		return o.Binance, true
	default:
		return PaymentOption{}, false
	}
}

type WinningNumbers struct {
	Cifras      string `json:"cifras"`
	Series      string `json:"series"`
	CifrasTitle string `json:"cifrasTitle"`
	SeriesTitle string `json:"seriesTitle"`
}

type GradientColors struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type AppColors struct {
	Home   GradientColors `json:"home"`
	Reg    GradientColors `json:"reg"`
	Ticket GradientColors `json:"ticket"`
}

// SettingsPatch carries a partial settings update. Nil fields are left as is.
type SettingsPatch struct {
	RaffleDate     *string         `json:"raffle_date,omitempty"`
	RaffleSize     *int            `json:"raffle_size,omitempty"`
	USDToCOPRate   *float64        `json:"usd_to_cop_rate,omitempty"`
	RaffleInfo     *RaffleInfo     `json:"raffle_info,omitempty"`
	PaymentOptions *PaymentOptions `json:"payment_options,omitempty"`
	LogoURL        *string         `json:"logo_url,omitempty"`
	WinningNumbers *WinningNumbers `json:"winning_numbers,omitempty"`
	Colors         *AppColors      `json:"colors,omitempty"`
}
