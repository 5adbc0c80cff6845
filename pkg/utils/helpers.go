package utils

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

func ReplaceQueryParams(namedQuery string, params map[string]interface{}) (string, []interface{}) {
	var (
		i    int = 1
		args []interface{}
	)

	for k, v := range params {
		if k != "" {
			namedQuery = strings.ReplaceAll(namedQuery, ":"+k, "$"+strconv.Itoa(i))

			args = append(args, v)
			i++
		}
	}

	return namedQuery, args
}

// FCurrency renders an amount with thousands separators and two decimals: 1,000.50
func FCurrency(n decimal.Decimal) string {
	f, _ := n.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// FAmount is FCurrency followed by the currency code.
func FAmount(n decimal.Decimal, currency string) string {
	return FCurrency(n) + " " + currency
}

// CompactSQL folds a multi-line query into one line for logs.
func CompactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
