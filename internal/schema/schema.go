// Package schema declares the fixed sheet layouts for every record type:
// the header column lists, the repeating item-block geometry, and the
// localized field/placeholder mappings used by contracts. All layouts are
// plain values constructed at startup and validated once against the live
// sheet headers, so nothing downstream needs to trust the spreadsheet shape
// blindly.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// RecordType identifies one of the three generated document kinds.
type RecordType int

const (
	RecordInvoice RecordType = iota
	RecordCreditNote
	RecordContract
)

func (t RecordType) String() string {
	switch t {
	case RecordInvoice:
		return "invoice"
	case RecordCreditNote:
		return "credit note"
	case RecordContract:
		return "contract"
	default:
		return fmt.Sprintf("record-type-%d", int(t))
	}
}

// ErrHeaderMismatch is returned when a live sheet header does not agree with
// the declared layout for its record type.
var ErrHeaderMismatch = errors.New("sheet header does not match declared layout")

// ItemBlockLayout describes where a record type's repeating item block sits
// inside its flat row and how wide it is. Item columns are addressed by slot
// arithmetic (StartColumn + n×ColumnsPerItem), not by header name, because
// their labels embed the row number.
type ItemBlockLayout struct {
	StartColumn    int // 0-based index of the first item cell
	ColumnsPerItem int
	MaxRows        int // Hard cap; encode truncates beyond this
}

// Width is the total number of item cells the flat row reserves.
func (l ItemBlockLayout) Width() int {
	return l.ColumnsPerItem * l.MaxRows
}

// InvoiceColumns is the fixed invoice sheet header, in storage order.
var InvoiceColumns = []string{
	"ID", "Project", "Invoice Number", "Date", "Due Date",
	"Client Name", "Client Address", "Client VAT ID",
	"Currency", "Subtotal", "Tax Rate", "Tax Amount", "Total",
	"Payment Terms", "Bank Account", "Bank Correspondent",
	"Our Company", "Template", "Notes", "Document Link", "PDF Link",
}

// CreditNoteColumns is the fixed credit note sheet header, in storage order.
var CreditNoteColumns = []string{
	"ID", "Project", "Credit Note Number", "Date",
	"Client Name", "Client Address", "Client VAT ID",
	"Currency", "Subtotal", "Tax Rate", "Tax Amount", "Total",
	"Reason", "Our Company", "Template", "Notes", "Document Link", "PDF Link",
}

// Item column label suffixes, combined with the 1-based row number as
// "Row {n} {suffix}".
var (
	InvoiceItemColumns    = []string{"#", "Service", "Period", "Quantity", "Rate/hour", "Amount"}
	CreditNoteItemColumns = []string{"#", "Description", "Period", "Amount"}
	ContractItemColumns   = []string{"#", "Leistung", "Zeitraum", "Betrag"}
)

// Item block layouts per record type. Start columns equal the fixed header
// widths; validated against the live header by ValidateHeader.
var (
	InvoiceItems    = ItemBlockLayout{StartColumn: len(InvoiceColumns), ColumnsPerItem: 6, MaxRows: 10}
	CreditNoteItems = ItemBlockLayout{StartColumn: len(CreditNoteColumns), ColumnsPerItem: 4, MaxRows: 10}
	ContractItems   = ItemBlockLayout{StartColumn: len(ContractColumnOrder), ColumnsPerItem: 4, MaxRows: 10}
)

// ItemColumnName builds the storage header label for one item cell,
// e.g. ("Row", 3, "Amount") -> "Row 3 Amount".
func ItemColumnName(prefix string, row int, suffix string) string {
	return fmt.Sprintf("%s %d %s", prefix, row, suffix)
}

// FullHeader returns the complete expected header for a positional layout:
// the fixed columns followed by MaxRows groups of item columns.
func FullHeader(fixed []string, itemCols []string, layout ItemBlockLayout, rowPrefix string) []string {
	header := make([]string, 0, len(fixed)+layout.Width())
	header = append(header, fixed...)
	for n := 1; n <= layout.MaxRows; n++ {
		for _, c := range itemCols {
			header = append(header, ItemColumnName(rowPrefix, n, c))
		}
	}
	return header
}

// ValidateHeader checks that a live header is long enough to hold the fixed
// columns plus the declared item block. Column order may drift (the codec
// re-reads names), but a header shorter than the layout means the sheet was
// restructured and every positional decode would misfire.
func ValidateHeader(t RecordType, layout ItemBlockLayout, header []string) error {
	want := layout.StartColumn + layout.Width()
	if len(header) < want {
		return fmt.Errorf("%w: %s sheet has %d columns, layout needs %d",
			ErrHeaderMismatch, t, len(header), want)
	}
	return nil
}

// PeriodLikeColumn reports whether a column holds free text that a
// spreadsheet engine would happily reinterpret as a date (e.g. "01-03/2024").
// Values bound for these columns get a literal text escape on encode.
func PeriodLikeColumn(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "period") || strings.Contains(n, "zeitraum")
}
