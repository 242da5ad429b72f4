package domain

// UserRole defines what an authenticated actor may do with invoices.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
	RoleViewer     UserRole = "viewer"
)

// ValidUserRoles lists all user roles.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:      true,
	RoleAccountant: true,
	RoleViewer:     true,
}

var roleLevel = map[UserRole]int{
	RoleViewer:     1,
	RoleAccountant: 2,
	RoleAdmin:      3,
}

// AtLeast reports whether r grants everything min grants.
func (r UserRole) AtLeast(min UserRole) bool {
	return roleLevel[r] > 0 && roleLevel[r] >= roleLevel[min]
}

// InvoiceType identifies who the invoice is raised for or received from.
type InvoiceType string

const (
	InvoiceTypeClient     InvoiceType = "client"
	InvoiceTypeFreelancer InvoiceType = "freelancer"
	InvoiceTypeContractor InvoiceType = "contractor"
	InvoiceTypeVendor     InvoiceType = "vendor"
)

// ValidInvoiceTypes lists all invoice types.
var ValidInvoiceTypes = map[InvoiceType]bool{
	InvoiceTypeClient:     true,
	InvoiceTypeFreelancer: true,
	InvoiceTypeContractor: true,
	InvoiceTypeVendor:     true,
}

// WithholdsTDS reports whether invoices of this type are subject to TDS.
func (t InvoiceType) WithholdsTDS() bool {
	return t != InvoiceTypeClient
}

// CounterpartyKind returns the counterparty kind an invoice type is issued against.
func (t InvoiceType) CounterpartyKind() CounterpartyKind {
	switch t {
	case InvoiceTypeFreelancer:
		return CounterpartyFreelancer
	case InvoiceTypeContractor:
		return CounterpartyContractor
	case InvoiceTypeVendor:
		return CounterpartyVendor
	default:
		return CounterpartyContact
	}
}

// InvoiceStatus represents the lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusViewed    InvoiceStatus = "viewed"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// invoiceTransitions lists the statuses reachable from each status.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:      {InvoiceStatusViewed, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusViewed:    {InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusPartial:   {InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue:   {InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {},
}

// CanTransition reports whether an invoice may move from s to next.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CounterpartyKind is the CRM record type on the other side of an invoice.
type CounterpartyKind string

const (
	CounterpartyContact    CounterpartyKind = "contact"
	CounterpartyFreelancer CounterpartyKind = "freelancer"
	CounterpartyContractor CounterpartyKind = "contractor"
	CounterpartyVendor     CounterpartyKind = "vendor"
)

// ValidCounterpartyKinds lists all counterparty kinds.
var ValidCounterpartyKinds = map[CounterpartyKind]bool{
	CounterpartyContact:    true,
	CounterpartyFreelancer: true,
	CounterpartyContractor: true,
	CounterpartyVendor:     true,
}

// PartyType is the legal constitution of a payee, which drives 194C rates.
type PartyType string

const (
	PartyIndividual PartyType = "individual"
	PartyHUF        PartyType = "huf"
	PartyCompany    PartyType = "company"
	PartyFirm       PartyType = "firm"
	PartyOther      PartyType = "other"
)

// IsIndividualOrHUF reports whether the lower individual/HUF TDS rate applies.
func (p PartyType) IsIndividualOrHUF() bool {
	return p == PartyIndividual || p == PartyHUF
}

// VendorType distinguishes goods suppliers from service vendors.
type VendorType string

const (
	VendorSupplier VendorType = "supplier"
	VendorService  VendorType = "service"
)

// ValidVendorTypes lists all vendor types.
var ValidVendorTypes = map[VendorType]bool{
	VendorSupplier: true,
	VendorService:  true,
}

// ValidPartyTypes lists all party types.
var ValidPartyTypes = map[PartyType]bool{
	PartyIndividual: true,
	PartyHUF:        true,
	PartyCompany:    true,
	PartyFirm:       true,
	PartyOther:      true,
}
