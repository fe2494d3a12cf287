package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCNPJ(t *testing.T) {
	tests := []struct {
		name  string
		cnpj  string
		valid bool
	}{
		{"valid with punctuation", "11.222.333/0001-81", true},
		{"valid digits only", "11222333000181", true},
		{"wrong check digits", "11.222.333/0001-00", false},
		{"too short", "1122233300018", false},
		{"too long", "112223330001811", false},
		{"all same digit", "00000000000000", false},
		{"empty", "", false},
		{"letters", "11.222.333/0001-8a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidCNPJ(tt.cnpj))
		})
	}
}

func TestFormatCNPJ(t *testing.T) {
	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ("11222333000181"))
	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ("11.222.333/0001-81"))
	// Anything that is not 14 digits passes through untouched.
	assert.Equal(t, "123", FormatCNPJ("123"))
}

func TestValidCEP(t *testing.T) {
	assert.True(t, ValidCEP("01001-000"))
	assert.True(t, ValidCEP("01001000"))
	assert.False(t, ValidCEP("0100100"))
	assert.False(t, ValidCEP(""))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "US$ 0,00"},
		{"1234.56", "US$ 1.234,56"},
		{"1000000", "US$ 1.000.000,00"},
		{"999.9", "US$ 999,90"},
		{"-200.00", "-US$ 200,00"},
		{"0.01", "US$ 0,01"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.expected, FormatUSD(amount))
		})
	}
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.500,00", FormatBRL(decimal.RequireFromString("1500")))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2024, date.Year())
	assert.Equal(t, 3, int(date.Month()))
	assert.Equal(t, 15, date.Day())

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "11222333000181", OnlyDigits("11.222.333/0001-81"))
	assert.Equal(t, "", OnlyDigits("abc"))
}
