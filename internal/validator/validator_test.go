package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/structs"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"1", true},
		{"1.00", true},
		{"100", true},
		{" 250.5 ", true},
		{"1000000", true},
		{"1000000.00", true},
		{"0.999999", false},
		{"1000000.01", false},
		{"0", false},
		{"-5", false},
		{"", false},
		{"abc", false},
		{"NaN", false},
		{"Infinity", false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateAmount(tc.raw))
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	for _, c := range []string{"USD", "usd", "Eur", "GBP", " inr "} {
		assert.True(t, ValidateCurrency(c), c)
	}
	for _, c := range []string{"", "RUB", "US", "USDT", "dollar"} {
		assert.False(t, ValidateCurrency(c), c)
	}
}

func TestValidateAddressField(t *testing.T) {
	require.NoError(t, ValidateAddressField("US", "Country"))
	require.NoError(t, ValidateAddressField("  Cupertino ", "City"))

	err := ValidateAddressField(" a ", "City")
	require.Error(t, err)
	assert.Equal(t, "City must be at least 2 characters long", err.Error())

	var vErr *structs.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "City", vErr.Field)
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"+19035310488", "19035310488", "+1 (903) 531-0488", "7", "+1234567890123456"}
	for _, p := range valid {
		assert.NoError(t, ValidatePhone(p), p)
	}

	invalid := []string{"", "+", "0123456", "+0123", "12345678901234567", "phone", "+1 903 abc"}
	for _, p := range invalid {
		assert.Error(t, ValidatePhone(p), p)
	}
	assert.Equal(t, "+19035310488", NormalizePhone(" +1 (903) 531-0488 "))
}

func TestValidateZip(t *testing.T) {
	assert.NoError(t, ValidateZip("95014"))
	assert.NoError(t, ValidateZip("E1"))
	assert.EqualError(t, ValidateZip("9"), "ZIP code must be at least 2 characters long")
}

func TestProductFields(t *testing.T) {
	assert.NoError(t, ValidateProductName("VPN"))
	assert.Error(t, ValidateProductName("V"))
	assert.Error(t, ValidateProductName(strings.Repeat("x", MaxNameLength+1)))

	assert.NoError(t, ValidateProductDescription("Monthly plan"))
	assert.Error(t, ValidateProductDescription("Plan"))
}

func TestCheckAddressLimits(t *testing.T) {
	addr := structs.Address{Country: "US", State: "CA", City: "Cupertino", Address: "1 Infinite Loop", Zip: "95014"}
	assert.NoError(t, CheckAddressLimits(addr))

	addr.City = strings.Repeat("c", MaxAddressFieldLength+1)
	assert.Error(t, CheckAddressLimits(addr))
}

func TestIsValidUserID(t *testing.T) {
	assert.True(t, IsValidUserID("1360354055"))
	assert.False(t, IsValidUserID("12a"))
	assert.False(t, IsValidUserID(""))
}
