package schema

// TableMatchPolicy selects how a document table header is matched against an
// item-block anchor signature. Invoices inherited a strict matcher and
// credit notes a lenient one; both are kept as explicit policies rather than
// silently unified.
type TableMatchPolicy int

const (
	// MatchStrict requires an exact ordered, case-sensitive header match
	// with the exact column count.
	MatchStrict TableMatchPolicy = iota
	// MatchLenient accepts a header whose cells each contain the expected
	// label case-insensitively, column count permitting extras.
	MatchLenient
)

// Item-table anchor signatures: the header row by which the renderer
// recognizes the repeating-content table inside a template.
var (
	InvoiceTableSignature    = []string{"#", "Service", "Period", "Quantity", "Rate/hour", "Amount"}
	CreditNoteTableSignature = []string{"#", "Description", "Period", "Amount"}
)
