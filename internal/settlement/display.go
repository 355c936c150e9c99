package settlement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundForDisplay 仅用于展示的两位小数
func RoundForDisplay(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatAmount 带千分位的展示金额, 例如 -1,234.50
func FormatAmount(d decimal.Decimal) string {
	rounded := d.Round(2)
	s := rounded.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
