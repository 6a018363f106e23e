package reportmath

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	arabicZero     = '٠' // ٠
	arabicGroupSep = '٬' // ٬
	arabicDecSep   = '٫' // ٫
	riyalSuffix    = "ر.س."
)

// FormatSAR renders an amount as Saudi Riyal the way the ar-SA locale does:
// Arabic-Indic digits, thousands grouping with U+066C, decimal separator
// U+066B and the riyal symbol as a suffix. Always two fraction digits.
func FormatSAR(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(arabicGroupSep)
		}
		b.WriteRune(arabicDigit(r))
	}
	b.WriteRune(arabicDecSep)
	for _, r := range fracPart {
		b.WriteRune(arabicDigit(r))
	}
	b.WriteByte(' ')
	b.WriteString(riyalSuffix)
	return b.String()
}

func arabicDigit(ascii rune) rune {
	return arabicZero + (ascii - '0')
}

// DaysOverdue counts whole days between the last payment and now. No payment
// on record, or a payment in the future, counts as zero.
func DaysOverdue(lastPayment *time.Time, now time.Time) int {
	if lastPayment == nil {
		return 0
	}
	days := int(now.Sub(*lastPayment).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Percent computes part/whole as a percentage rounded to two decimals,
// returning zero when the denominator is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

// RatePercent is Percent over integer counts (PTP kept rates and the like).
func RatePercent(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Div(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)).Round(2)
}

// GrowthPercent reports period-over-period growth. A zero or negative prior
// denominator reports 100 (growth from nothing), never an error or infinity.
func GrowthPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(100)
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
}
