package utils

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCurrency(t *testing.T) {
	assert.Equal(t, "1,000.50", FCurrency(decimal.RequireFromString("1000.5")))
	assert.Equal(t, "100.00", FCurrency(decimal.NewFromInt(100)))
	assert.Equal(t, "1,000,000.00", FCurrency(decimal.NewFromInt(1000000)))
	assert.Equal(t, "99.99 USD", FAmount(decimal.RequireFromString("99.99"), "USD"))
}

func TestGenOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	a := GenOrderNumber(42, now)
	b := GenOrderNumber(42, now)

	assert.Regexp(t, regexp.MustCompile(`^TG_42_1700000000000_[0-9a-f]{8}$`), a)
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(GenOrderNumber(9223372036854775807, now)), 50)
}

func TestReplaceQueryParams(t *testing.T) {
	query, args := ReplaceQueryParams("UPDATE t SET title = :title WHERE id = :id", map[string]interface{}{
		"title": "x",
		"id":    "abc",
	})
	assert.NotContains(t, query, ":")
	assert.Len(t, args, 2)
}

func TestCompactSQL(t *testing.T) {
	assert.Equal(t, "SELECT a FROM b WHERE c = $1", CompactSQL("\n\tSELECT a\n\t\tFROM b\n WHERE c = $1\n"))
}

func TestFirstString(t *testing.T) {
	m := map[string]any{
		"empty":   "",
		"nested":  map[string]any{"a": "b"},
		"number":  float64(12345678),
		"url":     "https://pay.example/1",
		"nothing": nil,
	}
	assert.Equal(t, "https://pay.example/1", FirstString(m, "missing", "empty", "nested", "nothing", "url"))
	assert.Equal(t, "12345678", FirstString(m, "number"))
	assert.Equal(t, "", FirstString(m, "missing"))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy(float64(1)))
	assert.True(t, Truthy("success"))
	assert.False(t, Truthy("false"))
	assert.False(t, Truthy(float64(0)))
	assert.False(t, Truthy(nil))
	assert.True(t, Truthy(json.Number("1")))
	assert.False(t, Truthy(json.Number("0")))
}

func TestUnmarshalNumbersKeepsLongIDs(t *testing.T) {
	var m map[string]any
	require.NoError(t, UnmarshalNumbers([]byte(`{"invoice_id":9007199254740993,"amount":100.50}`), &m))
	assert.Equal(t, "9007199254740993", FirstString(m, "invoice_id"))
	assert.Equal(t, "100.50", FirstString(m, "amount"))

	assert.Error(t, UnmarshalNumbers([]byte(`{"a":1} trailing`), &m))
	assert.Error(t, UnmarshalNumbers([]byte(`{"a":`), &m))
}
