package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates (loan, return, exit).
const DateLayout = "2006-01-02"

// ParseDate parses a wire-format calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// OnlyDigits strips every non-digit rune from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCNPJ checks a Brazilian legal-entity tax id, with or without
// punctuation, against its two check digits.
func ValidCNPJ(cnpj string) bool {
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return false
	}

	// All-same-digit ids (00000000000000 etc.) pass the checksum but are invalid.
	same := true
	for i := 1; i < 14; i++ {
		if digits[i] != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	return cnpjCheckDigit(digits, 12) == int(digits[12]-'0') &&
		cnpjCheckDigit(digits, 13) == int(digits[13]-'0')
}

func cnpjCheckDigit(digits string, length int) int {
	weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	offset := len(weights) - length
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(digits[i]-'0') * weights[offset+i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// FormatCNPJ renders a 14-digit tax id as ##.###.###/####-##.
// Inputs that are not 14 digits are returned unchanged.
func FormatCNPJ(cnpj string) string {
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return cnpj
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s",
		digits[0:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
}

// ValidCEP checks a Brazilian postal code (8 digits, optional dash).
func ValidCEP(cep string) bool {
	return len(OnlyDigits(cep)) == 8
}

// FormatMoney renders an amount with a currency symbol using Brazilian
// separators: US$ 1.234,56. Display only; arithmetic stays decimal.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := symbol + " " + strings.Join(groups, ".") + "," + fracPart
	if negative {
		return "-" + out
	}
	return out
}

// FormatUSD renders a USD amount for display.
func FormatUSD(amount decimal.Decimal) string {
	return FormatMoney("US$", amount)
}

// FormatBRL renders a BRL amount for display.
func FormatBRL(amount decimal.Decimal) string {
	return FormatMoney("R$", amount)
}
