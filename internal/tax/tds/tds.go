// Package tds determines tax deducted at source on payments to freelancers,
// contractors and vendors.
package tds

import (
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
)

// Section is an Income Tax Act section under which tax is withheld.
type Section string

const (
	Section194C Section = "194C"
	Section194J Section = "194J"
	Section194H Section = "194H"
	Section194I Section = "194I"
	Section194A Section = "194A"
)

var (
	hundred = decimal.NewFromInt(100)

	// NoPANRate applies whenever the payee has not furnished a PAN.
	NoPANRate = decimal.NewFromInt(20)
)

type sectionRule struct {
	description        string
	singleThreshold    decimal.Decimal
	aggregateThreshold decimal.Decimal
	rate               func(in Input) decimal.Decimal
}

var sections = map[Section]sectionRule{
	Section194C: {
		description:        "Payment to contractors",
		singleThreshold:    decimal.NewFromInt(30000),
		aggregateThreshold: decimal.NewFromInt(100000),
		rate: func(in Input) decimal.Decimal {
			if in.PartyType.IsIndividualOrHUF() {
				return decimal.NewFromInt(1)
			}
			return decimal.NewFromInt(2)
		},
	},
	Section194J: {
		description:        "Fees for professional or technical services",
		singleThreshold:    decimal.NewFromInt(30000),
		aggregateThreshold: decimal.NewFromInt(30000),
		rate: func(in Input) decimal.Decimal {
			if in.IsTechnical && !in.IsProfessional {
				return decimal.NewFromInt(2)
			}
			return decimal.NewFromInt(10)
		},
	},
	Section194H: {
		description:        "Commission or brokerage",
		singleThreshold:    decimal.NewFromInt(15000),
		aggregateThreshold: decimal.NewFromInt(15000),
		rate:               func(Input) decimal.Decimal { return decimal.NewFromInt(5) },
	},
	Section194I: {
		description:        "Rent",
		singleThreshold:    decimal.NewFromInt(240000),
		aggregateThreshold: decimal.NewFromInt(240000),
		rate: func(in Input) decimal.Decimal {
			if in.IsPlantMachinery {
				return decimal.NewFromInt(2)
			}
			return decimal.NewFromInt(10)
		},
	},
	// Senior-citizen threshold of 50,000 is not modelled.
	Section194A: {
		description:        "Interest other than interest on securities",
		singleThreshold:    decimal.NewFromInt(5000),
		aggregateThreshold: decimal.NewFromInt(5000),
		rate:               func(Input) decimal.Decimal { return decimal.NewFromInt(10) },
	},
}

// Input describes one payment under consideration.
type Input struct {
	Amount           decimal.Decimal
	Section          Section
	PartyType        domain.PartyType
	IsProfessional   bool
	IsTechnical      bool
	IsPlantMachinery bool
	// CumulativeAmount is what was already paid to the same payee this financial year.
	CumulativeAmount decimal.Decimal
	HasPAN           bool
}

// Result is the computed withholding for a payment.
type Result struct {
	Amount             decimal.Decimal `json:"amount"`
	TDSRate            decimal.Decimal `json:"tds_rate"`
	TDSAmount          decimal.Decimal `json:"tds_amount"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	Section            Section         `json:"section"`
	SectionDescription string          `json:"section_description"`
	IsThresholdMet     bool            `json:"is_threshold_met"`
	PANRequired        bool            `json:"pan_required"`
	HigherRateApplied  bool            `json:"higher_rate_applied"`
}

// Known reports whether s is in the section table.
func Known(s Section) bool {
	_, ok := sections[s]
	return ok
}

// Sections returns the supported sections in a stable order.
func Sections() []Section {
	return []Section{Section194A, Section194C, Section194H, Section194I, Section194J}
}

// Description returns the human-readable title of a section.
func Description(s Section) string {
	return sections[s].description
}

// Calculate applies the statutory section table to in. The rate is reported
// even when the threshold is not met, but nothing is withheld in that case.
func Calculate(in Input) (Result, error) {
	rule, ok := sections[in.Section]
	if !ok {
		return Result{}, domain.ErrUnknownTDSSection
	}

	res := Result{
		Amount:             in.Amount,
		Section:            in.Section,
		SectionDescription: rule.description,
		PANRequired:        !in.HasPAN,
	}

	res.TDSRate = rule.rate(in)
	if !in.HasPAN {
		res.TDSRate = NoPANRate
		res.HigherRateApplied = true
	}

	res.IsThresholdMet = in.Amount.GreaterThanOrEqual(rule.singleThreshold) ||
		in.CumulativeAmount.Add(in.Amount).GreaterThanOrEqual(rule.aggregateThreshold)

	res.TDSAmount = decimal.Zero
	if res.IsThresholdMet {
		res.TDSAmount = withhold(in.Amount, res.TDSRate)
	}
	res.NetAmount = in.Amount.Sub(res.TDSAmount)
	return res, nil
}

func withhold(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}
