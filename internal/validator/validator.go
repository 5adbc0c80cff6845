package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"tgpay/internal/structs"
)

const (
	MinFieldLength        = 2
	MinDescriptionLength  = 5
	MaxOrderNumberLength  = 50
	MaxDescriptionLength  = 1024
	MaxNameLength         = 100
	MaxAddressFieldLength = 100
)

var (
	MinAmount = decimal.NewFromInt(1)
	MaxAmount = decimal.NewFromInt(1_000_000)

	SupportedCurrencies = []string{"USD", "EUR", "GBP", "INR"}

	phoneRegex   = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\t", "")
	userIDRegexp = regexp.MustCompile(`^\d+$`)
)

// ParseAmount parses raw as a decimal and reports whether it is inside [MinAmount, MaxAmount].
func ParseAmount(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return d, AmountInRange(d)
}

func AmountInRange(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(MinAmount) && d.LessThanOrEqual(MaxAmount)
}

func ValidateAmount(raw string) bool {
	_, ok := ParseAmount(raw)
	return ok
}

func ValidateCurrency(raw string) bool {
	return slices.Contains(SupportedCurrencies, NormalizeCurrency(raw))
}

func NormalizeCurrency(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func ValidateAddressField(raw, label string) error {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < MinFieldLength {
		return structs.NewValidationError(label,
			fmt.Sprintf("%s must be at least %d characters long", label, MinFieldLength))
	}
	return nil
}

func ValidateZip(raw string) error {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < MinFieldLength {
		return structs.NewValidationError("zip",
			fmt.Sprintf("ZIP code must be at least %d characters long", MinFieldLength))
	}
	return nil
}

// NormalizePhone drops spaces, dashes and parentheses.
func NormalizePhone(raw string) string {
	return phoneStrip.Replace(strings.TrimSpace(raw))
}

func ValidatePhone(raw string) error {
	if !phoneRegex.MatchString(NormalizePhone(raw)) {
		return structs.NewValidationError("phone", "Please enter a valid phone number (e.g., +1234567890)")
	}
	return nil
}

func ValidateProductName(raw string) error {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) < MinFieldLength {
		return structs.NewValidationError("name",
			fmt.Sprintf("Product name must be at least %d characters long.", MinFieldLength))
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return structs.NewValidationError("name",
			fmt.Sprintf("Product name must be at most %d characters long.", MaxNameLength))
	}
	return nil
}

func ValidateProductDescription(raw string) error {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) < MinDescriptionLength {
		return structs.NewValidationError("description",
			fmt.Sprintf("Description must be at least %d characters long.", MinDescriptionLength))
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return structs.NewValidationError("description",
			fmt.Sprintf("Description must be at most %d characters long.", MaxDescriptionLength))
	}
	return nil
}

func IsValidUserID(raw string) bool {
	return userIDRegexp.MatchString(strings.TrimSpace(raw))
}

// CheckAddressLimits enforces the upper bounds a gateway request may carry.
func CheckAddressLimits(a structs.Address) error {
	fields := []struct {
		name  string
		value string
	}{
		{"country", a.Country},
		{"state", a.State},
		{"city", a.City},
		{"address", a.Address},
		{"zip", a.Zip},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > MaxAddressFieldLength {
			return structs.NewValidationError(f.name,
				fmt.Sprintf("%s too long: max %d characters", f.name, MaxAddressFieldLength))
		}
	}
	return nil
}
