package tds

import (
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
)

// InvoiceThreshold is the single cut-off used by the invoice-creation helpers
// for every section.
var InvoiceThreshold = decimal.NewFromInt(30000)

// PaymentKind is the nature of a payment, used to pick a section.
type PaymentKind string

const (
	PaymentContractor PaymentKind = "contractor"
	PaymentFreelancer PaymentKind = "freelancer"
	PaymentConsultant PaymentKind = "consultant"
	PaymentVendor     PaymentKind = "vendor"
	PaymentRent       PaymentKind = "rent"
	PaymentCommission PaymentKind = "commission"
	PaymentInterest   PaymentKind = "interest"
)

// DetermineSection maps a payment kind to its section. vendorType only
// matters for vendor payments.
func DetermineSection(kind PaymentKind, vendorType domain.VendorType) Section {
	switch kind {
	case PaymentContractor:
		return Section194C
	case PaymentFreelancer, PaymentConsultant:
		return Section194J
	case PaymentVendor:
		if vendorType == domain.VendorSupplier {
			return Section194C
		}
		return Section194J
	case PaymentRent:
		return Section194I
	case PaymentCommission:
		return Section194H
	case PaymentInterest:
		return Section194A
	default:
		return Section194J
	}
}

// ForFreelancerInvoice withholds under 194J at a flat 10%.
func ForFreelancerInvoice(amount decimal.Decimal, hasPAN bool) Result {
	return invoiceResult(amount, Section194J, decimal.NewFromInt(10), hasPAN)
}

// ForVendorInvoice withholds under 194C for suppliers (1% individual/HUF,
// 2% otherwise) and under 194J at 10% for service vendors.
func ForVendorInvoice(amount decimal.Decimal, vendorType domain.VendorType, partyType domain.PartyType, hasPAN bool) Result {
	section := DetermineSection(PaymentVendor, vendorType)
	rate := decimal.NewFromInt(10)
	if section == Section194C {
		rate = contractorRate(partyType)
	}
	return invoiceResult(amount, section, rate, hasPAN)
}

// ForContractorInvoice withholds under 194C.
func ForContractorInvoice(amount decimal.Decimal, partyType domain.PartyType, hasPAN bool) Result {
	return invoiceResult(amount, Section194C, contractorRate(partyType), hasPAN)
}

func contractorRate(partyType domain.PartyType) decimal.Decimal {
	if partyType.IsIndividualOrHUF() {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(2)
}

// invoiceResult applies the simplified creation-time rule: below the
// threshold nothing is withheld and the rate is zero.
func invoiceResult(amount decimal.Decimal, section Section, rate decimal.Decimal, hasPAN bool) Result {
	res := Result{
		Amount:             amount,
		Section:            section,
		SectionDescription: Description(section),
		PANRequired:        !hasPAN,
		TDSRate:            decimal.Zero,
		TDSAmount:          decimal.Zero,
		NetAmount:          amount,
	}
	if amount.LessThan(InvoiceThreshold) {
		return res
	}

	res.IsThresholdMet = true
	res.TDSRate = rate
	if !hasPAN {
		res.TDSRate = NoPANRate
		res.HigherRateApplied = true
	}
	res.TDSAmount = withhold(amount, res.TDSRate)
	res.NetAmount = amount.Sub(res.TDSAmount)
	return res
}
