package purchase

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"rifa/entity"
)

const ticketCodeLength = 16

// Payment reference formats, validated before anything reaches the
// persistence service.
var (
	nequiReferenceRe   = regexp.MustCompile(`^[A-HJ-NP-Z]\d{6,10}$`)
	binanceReferenceRe = regexp.MustCompile(`^\d{10,19}$`)
)

// ValidationError is a field-level input failure. The workflow step does not
// advance; the caller re-prompts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GenerateTicketCode returns a 16-digit numeric code. Uniqueness is
// probabilistic: the persistence service does not enforce it, matching the
// source product. A birthday-bound collision needs ~10^8 tickets.
func GenerateTicketCode() string {
	var b strings.Builder
	b.Grow(ticketCodeLength)
	for i := 0; i < ticketCodeLength; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}

// ValidateReference checks a payment reference against the platform format:
// nequi wants one leading letter (I and O excluded) plus 6-10 digits, binance
// a 10-19 digit order ID.
func ValidateReference(platform entity.PaymentPlatform, reference string) error {
	if reference == "" {
		return &ValidationError{Field: "reference", Message: "required"}
	}

	switch platform {
	case entity.PlatformNequi:
		if !nequiReferenceRe.MatchString(reference) {
			return &ValidationError{Field: "reference", Message: "must start with a letter (except I, O) followed by 6-10 digits"}
		}
	case entity.PlatformBinance:
		if !binanceReferenceRe.MatchString(reference) {
			return &ValidationError{Field: "reference", Message: "must be a 10-19 digit order ID"}
		}
	default:
		return &ValidationError{Field: "platform", Message: "unknown payment platform"}
	}
	return nil
}

func validateBuyer(buyer entity.BuyerInfo) error {
	required := map[string]string{
		"nombre":   buyer.Name,
		"apellido": buyer.Surname,
		"ciudad":   buyer.City,
		"pais":     buyer.Country,
		"whatsapp": buyer.Whatsapp,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "required"}
		}
	}

	switch buyer.PrizeType {
	case entity.PrizeTypeCifras, entity.PrizeTypeSeries:
		return nil
	default:
		return &ValidationError{Field: "prize_type", Message: "must be cifras or series"}
	}
}
