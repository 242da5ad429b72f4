package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords spells a rupee amount using the Indian lakh/crore grouping,
// e.g. "Rupees One Lakh Eighteen Thousand Only".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	rupees := amount.Truncate(0)
	paise := amount.Sub(rupees).Mul(decimal.NewFromInt(100)).IntPart()

	var b strings.Builder
	b.WriteString("Rupees ")
	if rupees.IsZero() {
		b.WriteString("Zero")
	} else {
		b.WriteString(IntegerInWords(rupees.IntPart()))
	}
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(IntegerInWords(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

// IntegerInWords spells n in the Indian numbering system. Zero yields "".
func IntegerInWords(n int64) string {
	if n < 0 {
		return "Minus " + IntegerInWords(-n)
	}
	var parts []string
	if crore := n / 10000000; crore > 0 {
		parts = append(parts, IntegerInWords(crore), "Crore")
		n %= 10000000
	}
	if lakh := n / 100000; lakh > 0 {
		parts = append(parts, belowHundred(lakh), "Lakh")
		n %= 100000
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, belowHundred(thousand), "Thousand")
		n %= 1000
	}
	if hundred := n / 100; hundred > 0 {
		parts = append(parts, ones[hundred], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
