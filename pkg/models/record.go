package models

// LineItem is one row of a record's repeating item block. Its width is fixed
// per record type (6 cells for invoices, 4 for credit notes and contracts);
// the first cell always carries the 1-based position and is restamped on
// encode regardless of what the caller supplied.
type LineItem []string

// Clone returns an independent copy of the item.
func (li LineItem) Clone() LineItem {
	out := make(LineItem, len(li))
	copy(out, li)
	return out
}

// Invoice is a customer invoice backed by one row of the invoice sheet.
// Monetary fields are kept as fixed 2-decimal strings because the sheet is
// the system of record and stores text.
type Invoice struct {
	// Core identifiers
	ID      string // Opaque unique id, generated once, immutable
	Project string // Project name, key into the reference table
	Number  string // Human-readable invoice number

	// Dates (display format, as entered)
	Date    string
	DueDate string

	// Client
	ClientName    string
	ClientAddress string
	ClientVATID   string

	// Amounts
	Currency  string // Currency symbol resolved from the project config
	Subtotal  string
	TaxRate   string // Integer-like percentage string, e.g. "15"
	TaxAmount string
	Total     string

	// Payment
	PaymentTerms      string
	BankAccount       string
	BankCorrespondent string

	OurCompany string
	Template   string // Selected template name (resolved to an id at render time)
	Notes      string

	// Generated artifacts, blank until rendered
	DocumentLink string
	PDFLink      string

	// ExchangeRate is supplied with the submission for USD documents and
	// only feeds the rendered exchange-rate section; it is not persisted.
	ExchangeRate string

	Items []LineItem // #, Service, Period, Quantity, Rate/hour, Amount
}

// CreditNote is a credit note backed by one row of the credit note sheet.
type CreditNote struct {
	ID      string
	Project string
	Number  string
	Date    string

	ClientName    string
	ClientAddress string
	ClientVATID   string

	Currency  string
	Subtotal  string
	TaxRate   string
	TaxAmount string
	Total     string

	Reason     string
	OurCompany string
	Template   string
	Notes      string

	DocumentLink string
	PDFLink      string

	// ExchangeRate mirrors the invoice field: render-only, not persisted.
	ExchangeRate string

	Items []LineItem // #, Description, Period, Amount
}

// Contract is a service contract backed by one row of the contract sheet.
// Unlike invoices and credit notes its sheet columns carry localized labels
// and are addressed through a field mapping rather than fixed positions.
type Contract struct {
	ID      string
	Project string
	Number  string
	Date    string

	ClientName    string
	ClientAddress string

	Start string // Contract period start
	End   string // Contract period end

	Fee      string // Agreed fee, 2-decimal string
	Currency string
	TaxRate  string

	OurCompany string
	Template   string

	DocumentLink string
	PDFLink      string

	Items []LineItem // #, Leistung, Zeitraum, Betrag
}

// ProjectConfig is the fully resolved per-project reference entity. A config
// is only usable when TemplateID is non-empty; unresolvable bank codes come
// back as empty strings rather than errors.
type ProjectConfig struct {
	Name string // Canonical project name as stored in the reference table

	ClientName    string
	ClientAddress string
	ClientVATID   string

	TaxRate      string // Normalized integer-like percentage string
	CurrencyCode string // ISO code as stored
	Currency     string // Display symbol resolved from the code

	PaymentTerms string

	TemplateName string
	TemplateID   string

	BankAccount       string // Full bank text resolved from the short code
	BankCorrespondent string

	OurCompany string
	FolderLink string // Raw storage-folder cell, may be a URL or blank
}
