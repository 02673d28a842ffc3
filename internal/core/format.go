package core

import (
	"fmt"
	"strings"
)

// FormatAmount renders an amount with two decimal places and thousands
// separators for display, e.g. "$1,234.50". Stored values are never rounded;
// truncation to two decimals happens only here.
func FormatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + fracPart
	if neg {
		return "-" + out
	}
	return out
}
