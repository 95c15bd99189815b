// Package render fills document templates from records: it duplicates the
// template, locates the repeating-item table by header signature, rewrites
// its rows, applies the exchange-rate section and the named placeholder
// substitutions, and triggers fixed-format export. Every step is a
// checkpoint; a failure aborts the render and surfaces the original error
// without rolling back the already-made document copy.
package render

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/api/docs/v1"

	"billgen/internal/drive"
	"billgen/internal/logger"
	"billgen/internal/schema"
	"billgen/pkg/models"
)

// DocsClient is the slice of the Docs API the renderer needs.
type DocsClient interface {
	Get(ctx context.Context, documentID string) (*docs.Document, error)
	BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error
}

// FileOps is the slice of the Drive API the renderer needs.
type FileOps interface {
	CopyTemplate(ctx context.Context, templateID, folderID, name string) (string, error)
	ExportPDF(ctx context.Context, fileID, outputFolderID, name string) (string, string, error)
}

// Rendered is the outcome of a successful render: the filled document and
// its exported PDF.
type Rendered struct {
	FileName     string
	DocumentID   string
	DocumentLink string
	PDFID        string
	PDFLink      string
}

// exchangeRateMarker anchors the paragraph blanked for non-USD documents.
const exchangeRateMarker = "Exchange rate"

// Renderer fills templates and exports them.
type Renderer struct {
	docs           DocsClient
	files          FileOps
	outputFolderID string
	log            zerolog.Logger
}

// NewRenderer creates a Renderer. Exported PDFs land in outputFolderID, a
// flat top-level folder independent of the per-project document folders.
func NewRenderer(docsClient DocsClient, files FileOps, outputFolderID string) *Renderer {
	return &Renderer{
		docs:           docsClient,
		files:          files,
		outputFolderID: outputFolderID,
		log:            logger.WithComponent("render"),
	}
}

// tableSpec describes the item anchor for one record type.
type tableSpec struct {
	signature   []string
	policy      schema.TableMatchPolicy
	numericCols []int // right-aligned columns
	required    bool  // fail hard vs degrade to zero item rows
}

// RenderInvoice renders an invoice document. A template whose item table
// does not match the strict 6-column signature fails with ErrTableNotFound.
func (r *Renderer) RenderInvoice(ctx context.Context, templateID, folderID string, inv *models.Invoice, currencyCode string) (*Rendered, error) {
	name := BuildFileName(inv.Date, "Invoice", inv.Number, inv.OurCompany, inv.ClientName)

	spec := &tableSpec{
		signature:   schema.InvoiceTableSignature,
		policy:      schema.MatchStrict,
		numericCols: []int{3, 4, 5},
		required:    true,
	}

	placeholders := map[string]string{
		"{Invoice Number}":     inv.Number,
		"{Date}":               inv.Date,
		"{Due Date}":           inv.DueDate,
		"{Client Name}":        inv.ClientName,
		"{Client Address}":     inv.ClientAddress,
		"{Client VAT ID}":      inv.ClientVATID,
		"{Subtotal}":           formatMoney(inv.Currency, inv.Subtotal),
		"{Tax Rate}":           formatPercent(inv.TaxRate),
		"{Tax Amount}":         formatMoney(inv.Currency, inv.TaxAmount),
		"{Total}":              formatMoney(inv.Currency, inv.Total),
		"{Payment Terms}":      inv.PaymentTerms,
		"{Bank Account}":       inv.BankAccount,
		"{Bank Correspondent}": inv.BankCorrespondent,
		"{Our Company}":        inv.OurCompany,
	}

	fx := &exchangeSection{code: currencyCode, rate: inv.ExchangeRate, total: inv.Total}
	return r.renderDocument(ctx, templateID, folderID, name, spec, itemCells(inv.Items, 6), fx, placeholders)
}

// RenderCreditNote renders a credit note document. The item table is
// matched leniently, and a template without a matching table degrades to a
// document with zero item rows instead of failing.
func (r *Renderer) RenderCreditNote(ctx context.Context, templateID, folderID string, cn *models.CreditNote, currencyCode string) (*Rendered, error) {
	name := BuildFileName(cn.Date, "CreditNote", cn.Number, cn.OurCompany, cn.ClientName)

	spec := &tableSpec{
		signature:   schema.CreditNoteTableSignature,
		policy:      schema.MatchLenient,
		numericCols: []int{3},
		required:    false,
	}

	placeholders := map[string]string{
		"{Credit Note Number}": cn.Number,
		"{Date}":               cn.Date,
		"{Client Name}":        cn.ClientName,
		"{Client Address}":     cn.ClientAddress,
		"{Client VAT ID}":      cn.ClientVATID,
		"{Subtotal}":           formatMoney(cn.Currency, cn.Subtotal),
		"{Tax Rate}":           formatPercent(cn.TaxRate),
		"{Tax Amount}":         formatMoney(cn.Currency, cn.TaxAmount),
		"{Total}":              formatMoney(cn.Currency, cn.Total),
		"{Reason}":             cn.Reason,
		"{Our Company}":        cn.OurCompany,
	}

	fx := &exchangeSection{code: currencyCode, rate: cn.ExchangeRate, total: cn.Total}
	return r.renderDocument(ctx, templateID, folderID, name, spec, itemCells(cn.Items, 4), fx, placeholders)
}

// RenderContract renders a contract document. Contracts have no item table;
// their items are substituted through index-keyed tokens ({Leistung-1},
// {Zeitraum-1}, ...) and unused tokens are blanked.
func (r *Renderer) RenderContract(ctx context.Context, templateID, folderID string, c *models.Contract) (*Rendered, error) {
	name := BuildFileName(c.Date, "Contract", c.Number, c.OurCompany, c.ClientName)

	placeholders := map[string]string{
		schema.ContractPlaceholders[schema.FieldContractNumber]:        c.Number,
		schema.ContractPlaceholders[schema.FieldContractDate]:          c.Date,
		schema.ContractPlaceholders[schema.FieldContractClientName]:    c.ClientName,
		schema.ContractPlaceholders[schema.FieldContractClientAddress]: c.ClientAddress,
		schema.ContractPlaceholders[schema.FieldContractStart]:         c.Start,
		schema.ContractPlaceholders[schema.FieldContractEnd]:           c.End,
		schema.ContractPlaceholders[schema.FieldContractFee]:           formatMoney(c.Currency, c.Fee),
		schema.ContractPlaceholders[schema.FieldContractCurrency]:      c.Currency,
		schema.ContractPlaceholders[schema.FieldContractTaxRate]:       formatPercent(c.TaxRate),
		schema.ContractPlaceholders[schema.FieldContractOurCompany]:    c.OurCompany,
		schema.ContractPlaceholders[schema.FieldContractProject]:       c.Project,
	}

	// Indexed item tokens: fill from present items, blank the rest.
	for n := 1; n <= schema.ContractItems.MaxRows; n++ {
		for cIdx := 0; cIdx < schema.ContractItemCellCount; cIdx++ {
			token := schema.ContractItemPlaceholder(cIdx, n)
			value := ""
			if n <= len(c.Items) && cIdx+1 < len(c.Items[n-1]) {
				value = c.Items[n-1][cIdx+1]
			}
			placeholders[token] = value
		}
	}

	return r.renderDocument(ctx, templateID, folderID, name, nil, nil, nil, placeholders)
}

// renderDocument runs the checkpointed render pipeline shared by all record
// types.
func (r *Renderer) renderDocument(
	ctx context.Context,
	templateID, folderID, name string,
	spec *tableSpec,
	items [][]string,
	fx *exchangeSection,
	placeholders map[string]string,
) (*Rendered, error) {
	docID, err := r.files.CopyTemplate(ctx, templateID, folderID, name)
	if err != nil {
		return nil, NewRenderError("CopyTemplate", err, name)
	}

	r.log.Debug().Str("document", docID).Str("name", name).Msg("Template copied")

	if spec != nil {
		if err := r.fillItemTable(ctx, docID, spec, items); err != nil {
			return nil, err
		}
	}

	if fx != nil {
		if err := r.applyExchangeSection(ctx, docID, fx, placeholders); err != nil {
			return nil, err
		}
	}

	if err := r.substitutePlaceholders(ctx, docID, placeholders); err != nil {
		return nil, err
	}

	pdfID, pdfLink, err := r.files.ExportPDF(ctx, docID, r.outputFolderID, name)
	if err != nil {
		return nil, NewRenderError("ExportPDF", err, name)
	}
	if pdfID == "" {
		return nil, NewRenderError("ExportPDF", ErrExportFailed, name)
	}

	r.log.Info().
		Str("document", docID).
		Str("pdf", pdfID).
		Str("name", name).
		Msg("Rendered and exported document")

	return &Rendered{
		FileName:     name,
		DocumentID:   docID,
		DocumentLink: drive.DocumentLink(docID),
		PDFID:        pdfID,
		PDFLink:      pdfLink,
	}, nil
}

// fillItemTable locates the anchor table, clears every row but the header
// and appends one row per logical item.
func (r *Renderer) fillItemTable(ctx context.Context, docID string, spec *tableSpec, items [][]string) error {
	const op = "FillItemTable"

	doc, err := r.docs.Get(ctx, docID)
	if err != nil {
		return NewRenderError(op, err, docID)
	}

	ft := findItemTable(doc, spec.signature, spec.policy)
	if ft == nil {
		if spec.required {
			return NewRenderError(op, ErrTableNotFound, strings.Join(spec.signature, "|"))
		}
		// Degraded-continue: the document keeps its template table untouched.
		r.log.Warn().
			Str("document", docID).
			Strs("signature", spec.signature).
			Msg("No matching item table, rendering without item rows")
		return nil
	}

	var structural []*docs.Request

	// Drop existing non-header rows from the bottom up.
	for rowIdx := len(ft.table.TableRows) - 1; rowIdx >= 1; rowIdx-- {
		structural = append(structural, &docs.Request{
			DeleteTableRow: &docs.DeleteTableRowRequest{
				TableCellLocation: &docs.TableCellLocation{
					TableStartLocation: &docs.Location{Index: ft.startIndex},
					RowIndex:           int64(rowIdx),
				},
			},
		})
	}
	// Insert one blank row per item below the header.
	for range items {
		structural = append(structural, &docs.Request{
			InsertTableRow: &docs.InsertTableRowRequest{
				TableCellLocation: &docs.TableCellLocation{
					TableStartLocation: &docs.Location{Index: ft.startIndex},
					RowIndex:           0,
				},
				InsertBelow: true,
			},
		})
	}

	if len(structural) > 0 {
		if err := r.docs.BatchUpdate(ctx, docID, structural); err != nil {
			return NewRenderError(op, err, "clearing and inserting item rows")
		}
	}
	if len(items) == 0 {
		return nil
	}

	// Structural edits shifted every index; re-read before filling text.
	doc, err = r.docs.Get(ctx, docID)
	if err != nil {
		return NewRenderError(op, err, docID)
	}
	ft = findItemTable(doc, spec.signature, spec.policy)
	if ft == nil {
		return NewRenderError(op, ErrTableNotFound, "anchor table lost after row rewrite")
	}

	// Fill cells in reverse document order so each insertion leaves the
	// indexes of the remaining (earlier) targets intact.
	var fill []*docs.Request
	for rowIdx := len(items); rowIdx >= 1; rowIdx-- {
		if rowIdx >= len(ft.table.TableRows) {
			continue
		}
		row := ft.table.TableRows[rowIdx]
		for cellIdx := len(row.TableCells) - 1; cellIdx >= 0; cellIdx-- {
			if cellIdx >= len(items[rowIdx-1]) {
				continue
			}
			value := items[rowIdx-1][cellIdx]
			if value == "" {
				continue
			}
			at := row.TableCells[cellIdx].StartIndex + 1
			fill = append(fill, &docs.Request{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: at},
					Text:     value,
				},
			})
			if containsInt(spec.numericCols, cellIdx) {
				fill = append(fill, &docs.Request{
					UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
						Range: &docs.Range{
							StartIndex: at,
							EndIndex:   at + utf16Len(value),
						},
						ParagraphStyle: &docs.ParagraphStyle{Alignment: "END"},
						Fields:         "alignment",
					},
				})
			}
		}
	}

	if len(fill) > 0 {
		if err := r.docs.BatchUpdate(ctx, docID, fill); err != nil {
			return NewRenderError(op, err, "filling item rows")
		}
	}
	return nil
}

// exchangeSection carries the inputs of the currency-dependent exchange
// rate paragraph.
type exchangeSection struct {
	code  string // ISO currency code
	rate  string // EUR exchange rate supplied with the submission
	total string
}

// applyExchangeSection fills the exchange-rate placeholders for USD
// documents; for any other currency it blanks the marker paragraph and its
// successor. Blanking rather than deleting keeps the paragraphs alive, which
// matters when the marker paragraph is the document's only one.
func (r *Renderer) applyExchangeSection(ctx context.Context, docID string, fx *exchangeSection, placeholders map[string]string) error {
	const op = "ApplyExchangeSection"

	if fx.code == "USD" {
		placeholders["{Exchange Rate}"] = formatRate(fx.rate)
		placeholders["{Total EUR}"] = eurEquivalent(fx.total, fx.rate)
		return nil
	}

	doc, err := r.docs.Get(ctx, docID)
	if err != nil {
		return NewRenderError(op, err, docID)
	}
	if doc.Body == nil {
		return nil
	}

	var ranges []*docs.Range
	for i, elem := range doc.Body.Content {
		if elem.Paragraph == nil || !strings.Contains(paragraphText(elem.Paragraph), exchangeRateMarker) {
			continue
		}
		ranges = append(ranges, blankableRange(elem))
		// The paragraph after the marker belongs to the section too.
		for j := i + 1; j < len(doc.Body.Content); j++ {
			if doc.Body.Content[j].Paragraph != nil {
				ranges = append(ranges, blankableRange(doc.Body.Content[j]))
				break
			}
		}
		break
	}

	// Delete later ranges first so earlier indexes stay valid.
	var requests []*docs.Request
	for i := len(ranges) - 1; i >= 0; i-- {
		if ranges[i] == nil {
			continue
		}
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{Range: ranges[i]},
		})
	}
	if len(requests) == 0 {
		return nil
	}
	if err := r.docs.BatchUpdate(ctx, docID, requests); err != nil {
		return NewRenderError(op, err, "blanking exchange rate section")
	}
	return nil
}

// blankableRange is the paragraph's content minus its trailing newline, so
// deletion empties the paragraph without removing it. Returns nil for an
// already-empty paragraph.
func blankableRange(elem *docs.StructuralElement) *docs.Range {
	if elem.EndIndex-1 <= elem.StartIndex {
		return nil
	}
	return &docs.Range{StartIndex: elem.StartIndex, EndIndex: elem.EndIndex - 1}
}

// substitutePlaceholders applies the named token substitutions in one batch.
func (r *Renderer) substitutePlaceholders(ctx context.Context, docID string, placeholders map[string]string) error {
	const op = "SubstitutePlaceholders"

	requests := make([]*docs.Request, 0, len(placeholders))
	for token, value := range placeholders {
		requests = append(requests, &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{Text: token, MatchCase: true},
				ReplaceText:  value,
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}
	if err := r.docs.BatchUpdate(ctx, docID, requests); err != nil {
		return NewRenderError(op, err, "replacing placeholders")
	}
	return nil
}

// itemCells prepares a record's items for the document table: width-clamped
// and position-stamped.
func itemCells(items []models.LineItem, width int) [][]string {
	out := make([][]string, len(items))
	for i, item := range items {
		cells := make([]string, width)
		for c := 0; c < width && c < len(item); c++ {
			cells[c] = item[c]
		}
		cells[0] = fmt.Sprint(i + 1)
		out[i] = cells
	}
	return out
}

func formatMoney(symbol, amount string) string {
	if amount == "" {
		return ""
	}
	return symbol + models.FormatAmount(amount)
}

func formatPercent(rate string) string {
	if rate == "" {
		return ""
	}
	return rate + "%"
}

// formatRate renders an exchange rate with 4 fixed decimals, or "" when the
// rate is not numeric.
func formatRate(rate string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return ""
	}
	return d.StringFixed(4)
}

// eurEquivalent converts a USD total into EUR at the given rate, formatted
// with 2 fixed decimals.
func eurEquivalent(total, rate string) string {
	t, err := decimal.NewFromString(strings.TrimSpace(total))
	if err != nil {
		return ""
	}
	r, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil || r.IsZero() {
		return ""
	}
	return "€" + t.Div(r).Round(2).StringFixed(2)
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func utf16Len(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}
