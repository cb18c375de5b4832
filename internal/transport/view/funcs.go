package view

import (
	"html/template"
	"strconv"
	"strings"
)

var funcs = template.FuncMap{
	"usd":    formatUSD,
	"number": formatNumber,
}

// formatUSD renders whole dollars with thousands separators, e.g. $25,999.
func formatUSD(amount float64) string {
	return "$" + formatNumber(int64(amount+0.5))
}

func formatNumber(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}
