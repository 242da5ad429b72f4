// Package numbering issues invoice numbers of the form PREFIX/YYYY-YY/NNNNN,
// sequenced per prefix and financial year.
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"supercrm/internal/domain"
)

const (
	PrefixClient     = "INV"
	PrefixFreelancer = "FCO"
	PrefixContractor = "CON"
	PrefixVendor     = "FVE"

	// MaxSequence is the largest sequence that fits the five-digit field.
	MaxSequence = 99999
)

var knownPrefixes = map[string]bool{
	PrefixClient:     true,
	PrefixFreelancer: true,
	PrefixContractor: true,
	PrefixVendor:     true,
}

var numberPattern = regexp.MustCompile(`^([A-Z]+)/(\d{4}-\d{2})/(\d{5})$`)

// Number is the parsed form of an invoice number.
type Number struct {
	Prefix        string `json:"prefix"`
	FinancialYear string `json:"financial_year"`
	Sequence      int    `json:"sequence"`
}

func (n Number) String() string {
	return Format(n.Prefix, n.FinancialYear, n.Sequence)
}

// FinancialYear returns the April-to-March year containing t, e.g. "2024-25".
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// Format renders an invoice number.
func Format(prefix, financialYear string, sequence int) string {
	return fmt.Sprintf("%s/%s/%05d", prefix, financialYear, sequence)
}

// Parse splits s into its parts. It only checks the shape; see Valid.
func Parse(s string) (Number, bool) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return Number{}, false
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return Number{}, false
	}
	return Number{Prefix: m[1], FinancialYear: m[2], Sequence: seq}, true
}

// Valid reports whether s is a well-formed number with a known prefix and a
// positive sequence.
func Valid(s string) bool {
	n, ok := Parse(s)
	return ok && knownPrefixes[n.Prefix] && n.Sequence > 0
}

// KnownPrefix reports whether p is one of the entity prefixes.
func KnownPrefix(p string) bool {
	return knownPrefixes[p]
}

// PrefixFor returns the prefix used for an invoice type.
func PrefixFor(t domain.InvoiceType) (string, error) {
	switch t {
	case domain.InvoiceTypeClient:
		return PrefixClient, nil
	case domain.InvoiceTypeFreelancer:
		return PrefixFreelancer, nil
	case domain.InvoiceTypeContractor:
		return PrefixContractor, nil
	case domain.InvoiceTypeVendor:
		return PrefixVendor, nil
	default:
		return "", domain.ErrInvalidInvoiceType
	}
}

// MaxFromExisting returns the highest sequence among existing numbers for the
// given prefix and financial year, or 0 if none match.
func MaxFromExisting(prefix, financialYear string, existing []string) int {
	highest := 0
	for _, s := range existing {
		n, ok := Parse(s)
		if !ok || n.Prefix != prefix || n.FinancialYear != financialYear {
			continue
		}
		if n.Sequence > highest {
			highest = n.Sequence
		}
	}
	return highest
}

// NextFromExisting derives the next number by scanning previously issued
// numbers. It is not safe against concurrent issuers; use a Sequencer for
// anything that persists invoices.
func NextFromExisting(prefix, financialYear string, existing []string) (string, error) {
	highest := MaxFromExisting(prefix, financialYear, existing)
	if highest >= MaxSequence {
		return "", domain.ErrSequenceExhausted
	}
	return Format(prefix, financialYear, highest+1), nil
}

func NextClientNumber(existing []string, now time.Time) (string, error) {
	return NextFromExisting(PrefixClient, FinancialYear(now), existing)
}

func NextFreelancerNumber(existing []string, now time.Time) (string, error) {
	return NextFromExisting(PrefixFreelancer, FinancialYear(now), existing)
}

func NextContractorNumber(existing []string, now time.Time) (string, error) {
	return NextFromExisting(PrefixContractor, FinancialYear(now), existing)
}

func NextVendorNumber(existing []string, now time.Time) (string, error) {
	return NextFromExisting(PrefixVendor, FinancialYear(now), existing)
}
