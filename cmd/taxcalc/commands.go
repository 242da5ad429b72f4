package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"supercrm/internal/domain"
	"supercrm/internal/numbering"
	"supercrm/internal/service"
	"supercrm/internal/tax/gst"
	"supercrm/internal/tax/tds"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "taxcalc",
		Short:         "GST, TDS and invoice numbering calculators",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(
		newGSTCmd(),
		newTDSCmd(),
		newInvoiceTDSCmd(),
		newGSTINCmd(),
		newFYCmd(time.Now),
		newNumberCmd(),
	)
	return root
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGSTCmd() *cobra.Command {
	var buyer, seller string
	cmd := &cobra.Command{
		Use:   "gst VALUE@RATE [VALUE@RATE...]",
		Short: "Split GST on one or more taxable values",
		Example: `  taxcalc gst 10000@18 --buyer 29 --seller 29
  taxcalc gst 333.33@18 333.33@18 90@5 --buyer 07 --seller 29`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gst.ValidStateCode(buyer) || !gst.ValidStateCode(seller) {
				return domain.ErrInvalidStateCode
			}
			lines := make([]gst.TaxableLine, 0, len(args))
			for _, arg := range args {
				line, err := parseLine(arg)
				if err != nil {
					return err
				}
				lines = append(lines, line)
			}

			intra := gst.IsIntraState(buyer, seller)
			if len(lines) == 1 {
				return printJSON(cmd, gst.Calculate(lines[0].TaxableValue, lines[0].GSTRate, intra))
			}
			return printJSON(cmd, gst.CalculateInvoice(lines, intra))
		},
	}
	cmd.Flags().StringVar(&buyer, "buyer", "", "buyer (place of supply) state code")
	cmd.Flags().StringVar(&seller, "seller", "", "seller state code")
	_ = cmd.MarkFlagRequired("buyer")
	_ = cmd.MarkFlagRequired("seller")
	return cmd
}

func parseLine(arg string) (gst.TaxableLine, error) {
	value, rate, ok := strings.Cut(arg, "@")
	if !ok {
		return gst.TaxableLine{}, fmt.Errorf("line %q must look like VALUE@RATE", arg)
	}
	v, err := decimal.NewFromString(value)
	if err != nil || v.IsNegative() {
		return gst.TaxableLine{}, fmt.Errorf("line %q: %w", arg, domain.ErrInvalidAmount)
	}
	r, err := decimal.NewFromString(rate)
	if err != nil || !gst.ValidRate(r) {
		return gst.TaxableLine{}, fmt.Errorf("line %q: %w", arg, domain.ErrInvalidGSTRate)
	}
	return gst.TaxableLine{TaxableValue: v, GSTRate: r}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %q: %w", s, domain.ErrInvalidAmount)
	}
	return d, nil
}

func newTDSCmd() *cobra.Command {
	var (
		in         tds.Input
		section    string
		partyType  string
		cumulative string
		noPAN      bool
	)
	cmd := &cobra.Command{
		Use:     "tds AMOUNT",
		Short:   "Apply the statutory TDS section table to a payment",
		Example: `  taxcalc tds 50000 --section 194J --professional`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if in.PartyType, err = parsePartyType(partyType); err != nil {
				return err
			}
			in.Amount = amount
			in.Section = tds.Section(strings.ToUpper(section))
			in.HasPAN = !noPAN
			if in.CumulativeAmount, err = decimal.NewFromString(cumulative); err != nil {
				return fmt.Errorf("cumulative %q: %w", cumulative, domain.ErrInvalidAmount)
			}

			res, err := tds.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "TDS section (194A, 194C, 194H, 194I, 194J)")
	cmd.Flags().StringVar(&partyType, "party-type", string(domain.PartyIndividual), "payee type (individual, huf, company, firm, other)")
	cmd.Flags().StringVar(&cumulative, "cumulative", "0", "amount already paid to the payee this financial year")
	cmd.Flags().BoolVar(&in.IsProfessional, "professional", false, "professional services (194J)")
	cmd.Flags().BoolVar(&in.IsTechnical, "technical", false, "technical services (194J)")
	cmd.Flags().BoolVar(&in.IsPlantMachinery, "plant-machinery", false, "rent of plant or machinery (194I)")
	cmd.Flags().BoolVar(&noPAN, "no-pan", false, "payee has not furnished a PAN")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func newInvoiceTDSCmd() *cobra.Command {
	var invoiceType, vendorType, partyType string
	var noPAN bool
	cmd := &cobra.Command{
		Use:     "tds-invoice AMOUNT",
		Short:   "Withholding applied when an invoice is raised",
		Example: `  taxcalc tds-invoice 100000 --type vendor --vendor-type supplier --party-type company`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			pt, err := parsePartyType(partyType)
			if err != nil {
				return err
			}
			vt := domain.VendorType(strings.ToLower(vendorType))
			if !domain.ValidVendorTypes[vt] {
				return fmt.Errorf("vendor type %q: %w", vendorType, domain.ErrInvalidVendorType)
			}
			hasPAN := !noPAN

			switch domain.InvoiceType(invoiceType) {
			case domain.InvoiceTypeFreelancer:
				return printJSON(cmd, tds.ForFreelancerInvoice(amount, hasPAN))
			case domain.InvoiceTypeContractor:
				return printJSON(cmd, tds.ForContractorInvoice(amount, pt, hasPAN))
			case domain.InvoiceTypeVendor:
				return printJSON(cmd, tds.ForVendorInvoice(amount, vt, pt, hasPAN))
			default:
				return fmt.Errorf("invoice type %q does not withhold TDS", invoiceType)
			}
		},
	}
	cmd.Flags().StringVar(&invoiceType, "type", "", "freelancer, contractor or vendor")
	cmd.Flags().StringVar(&vendorType, "vendor-type", string(domain.VendorService), "supplier or service")
	cmd.Flags().StringVar(&partyType, "party-type", string(domain.PartyIndividual), "payee type (individual, huf, company, firm, other)")
	cmd.Flags().BoolVar(&noPAN, "no-pan", false, "payee has not furnished a PAN")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func parsePartyType(s string) (domain.PartyType, error) {
	pt := domain.PartyType(strings.ToLower(strings.TrimSpace(s)))
	if !domain.ValidPartyTypes[pt] {
		return "", fmt.Errorf("party type %q: %w", s, domain.ErrInvalidPartyType)
	}
	return pt, nil
}

type gstinInfo struct {
	GSTIN     string `json:"gstin"`
	StateCode string `json:"state_code"`
	StateName string `json:"state_name"`
	PAN       string `json:"pan"`
}

func newGSTINCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gstin GSTIN",
		Short: "Validate a GSTIN and show its state and PAN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := strings.ToUpper(strings.TrimSpace(args[0]))
			if !gst.ValidGSTIN(g) {
				return domain.ErrInvalidGSTIN
			}
			info := gstinInfo{GSTIN: g}
			info.StateCode, _ = gst.StateCodeFromGSTIN(g)
			info.StateName, _ = gst.StateName(info.StateCode)
			info.PAN, _ = gst.PANFromGSTIN(g)
			return printJSON(cmd, info)
		},
	}
}

func newFYCmd(now func() time.Time) *cobra.Command {
	return &cobra.Command{
		Use:   "fy [YYYY-MM-DD]",
		Short: "Print the financial year containing a date (default today, IST)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := now().In(service.IST)
			if len(args) == 1 {
				parsed, err := time.ParseInLocation("2006-01-02", args[0], service.IST)
				if err != nil {
					return fmt.Errorf("date %q must be YYYY-MM-DD", args[0])
				}
				date = parsed
			}
			fmt.Fprintln(cmd.OutOrStdout(), numbering.FinancialYear(date))
			return nil
		},
	}
}

type numberInfo struct {
	numbering.Number
	Valid bool `json:"valid"`
}

func newNumberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "number INVOICE_NUMBER",
		Short: "Parse an invoice number of the form PREFIX/YYYY-YY/NNNNN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, ok := numbering.Parse(args[0])
			if !ok {
				return fmt.Errorf("%q is not an invoice number", args[0])
			}
			return printJSON(cmd, numberInfo{Number: n, Valid: numbering.Valid(args[0])})
		},
	}
}
