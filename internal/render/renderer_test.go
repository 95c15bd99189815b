package render

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/docs/v1"

	"billgen/internal/drive"
	"billgen/internal/schema"
	"billgen/pkg/models"
)

type fakeDocs struct {
	doc       *docs.Document
	getErr    error
	updateErr error
	batches   [][]*docs.Request
}

func (f *fakeDocs) Get(ctx context.Context, documentID string) (*docs.Document, error) {
	return f.doc, f.getErr
}

func (f *fakeDocs) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error {
	f.batches = append(f.batches, requests)
	return f.updateErr
}

type fakeFiles struct {
	copiedName string
	copyErr    error
	pdfID      string
	pdfLink    string
	exportErr  error
}

func (f *fakeFiles) CopyTemplate(ctx context.Context, templateID, folderID, name string) (string, error) {
	f.copiedName = name
	return "doc-copy-1", f.copyErr
}

func (f *fakeFiles) ExportPDF(ctx context.Context, fileID, outputFolderID, name string) (string, string, error) {
	return f.pdfID, f.pdfLink, f.exportErr
}

// tableDoc builds a document with one table: a header row with the given
// cell texts plus dataRows empty rows, with plausible monotonic indexes.
func tableDoc(header []string, dataRows int) *docs.Document {
	idx := int64(1)
	makeRow := func(texts []string) *docs.TableRow {
		row := &docs.TableRow{}
		for _, text := range texts {
			idx += 2
			row.TableCells = append(row.TableCells, &docs.TableCell{
				StartIndex: idx,
				Content: []*docs.StructuralElement{
					{
						Paragraph: &docs.Paragraph{
							Elements: []*docs.ParagraphElement{
								{TextRun: &docs.TextRun{Content: text + "\n"}},
							},
						},
					},
				},
			})
		}
		return row
	}

	table := &docs.Table{TableRows: []*docs.TableRow{makeRow(header)}}
	for i := 0; i < dataRows; i++ {
		table.TableRows = append(table.TableRows, makeRow(make([]string, len(header))))
	}

	return &docs.Document{
		Body: &docs.Body{
			Content: []*docs.StructuralElement{
				{StartIndex: 1, Table: table},
			},
		},
	}
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		Number:     "2024-017",
		Date:       "15.03.2024",
		ClientName: "Acme GmbH",
		OurCompany: "Our Company Ltd",
		Currency:   "$",
		Subtotal:   "100.00",
		TaxRate:    "15",
		TaxAmount:  "15.00",
		Total:      "115.00",
		Items: []models.LineItem{
			{"1", "Development", "01-03/2024", "40", "90.00", "3600.00"},
			{"2", "Support", "03/2024", "5", "80.00", "400.00"},
		},
	}
}

func TestBuildFileName(t *testing.T) {
	got := BuildFileName("15.03.2024", "Invoice", "2024/017", `Our "Co" Ltd`, `Acme <GmbH>`)
	want := "15.03.2024_Invoice2024017_Our Co Ltd-Acme GmbH"
	if got != want {
		t.Errorf("BuildFileName = %q, want %q", got, want)
	}
}

func TestBuildFileNameStripsUnsafeChars(t *testing.T) {
	// Every path-unsafe character must disappear, wherever it occurs.
	tests := []struct {
		in   string
		want string
	}{
		{`a\b`, "ab"},
		{"a/b", "ab"},
		{"a:b", "ab"},
		{"a*b", "ab"},
		{"a?b", "ab"},
		{`a"b`, "ab"},
		{"a<b", "ab"},
		{"a>b", "ab"},
		{"a|b", "ab"},
		{`\/:*?"<>|`, ""},
		{"Acme GmbH", "Acme GmbH"},
	}
	for _, tt := range tests {
		if got := stripUnsafe(tt.in); got != tt.want {
			t.Errorf("stripUnsafe(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchSignature(t *testing.T) {
	sig := schema.CreditNoteTableSignature

	tests := []struct {
		name   string
		header []string
		policy schema.TableMatchPolicy
		want   bool
	}{
		{"strict exact", schema.InvoiceTableSignature, schema.MatchStrict, true},
		{"strict wrong case", []string{"#", "service", "period", "quantity", "rate/hour", "amount"}, schema.MatchStrict, false},
		{"strict extra column", append(append([]string{}, schema.InvoiceTableSignature...), "Extra"), schema.MatchStrict, false},
		{"lenient exact", sig, schema.MatchLenient, true},
		{"lenient case variant", []string{"#", "DESCRIPTION", "Period", "Amount"}, schema.MatchLenient, true},
		{"lenient prefixed labels", []string{"#", "Description of work", "Period covered", "Amount (EUR)"}, schema.MatchLenient, true},
		{"lenient missing column", []string{"#", "Description", "Period"}, schema.MatchLenient, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := sig
			if tt.policy == schema.MatchStrict {
				want = schema.InvoiceTableSignature
			}
			if got := matchSignature(tt.header, want, tt.policy); got != tt.want {
				t.Errorf("matchSignature(%v) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestRenderInvoiceTableNotFound(t *testing.T) {
	// The only table carries a 4-column header, which the strict invoice
	// matcher must reject.
	fd := &fakeDocs{doc: tableDoc(schema.CreditNoteTableSignature, 1)}
	ff := &fakeFiles{pdfID: "pdf-1", pdfLink: "https://drive/pdf-1"}
	r := NewRenderer(fd, ff, "out-folder")

	_, err := r.RenderInvoice(context.Background(), "tmpl-1", "folder-1", sampleInvoice(), "EUR")
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("error = %v, want ErrTableNotFound", err)
	}
}

func TestRenderCreditNoteDegradesWithoutTable(t *testing.T) {
	// No table matches the credit note signature; rendering must still
	// succeed with zero item rows written.
	fd := &fakeDocs{doc: tableDoc([]string{"Completely", "Different", "Table"}, 1)}
	ff := &fakeFiles{pdfID: "pdf-1", pdfLink: "https://drive/pdf-1"}
	r := NewRenderer(fd, ff, "out-folder")

	cn := &models.CreditNote{
		Number:     "CN-01",
		Date:       "20.03.2024",
		ClientName: "Acme GmbH",
		OurCompany: "Our Company Ltd",
		Currency:   "€",
		Total:      "-238.00",
		Items:      []models.LineItem{{"1", "Correction", "02/2024", "-238.00"}},
	}

	rendered, err := r.RenderCreditNote(context.Background(), "tmpl-1", "folder-1", cn, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.PDFID != "pdf-1" {
		t.Errorf("PDFID = %q", rendered.PDFID)
	}

	// No structural table edits may have been issued.
	for _, batch := range fd.batches {
		for _, req := range batch {
			if req.InsertTableRow != nil || req.DeleteTableRow != nil || req.InsertText != nil {
				t.Errorf("unexpected table edit request %+v", req)
			}
		}
	}
}

func TestRenderInvoiceFillsItemRows(t *testing.T) {
	fd := &fakeDocs{doc: tableDoc(schema.InvoiceTableSignature, 2)}
	ff := &fakeFiles{pdfID: "pdf-1", pdfLink: "https://drive/pdf-1"}
	r := NewRenderer(fd, ff, "out-folder")

	rendered, err := r.RenderInvoice(context.Background(), "tmpl-1", "folder-1", sampleInvoice(), "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.DocumentID != "doc-copy-1" {
		t.Errorf("DocumentID = %q", rendered.DocumentID)
	}
	if rendered.DocumentLink != drive.DocumentLink("doc-copy-1") {
		t.Errorf("DocumentLink = %q", rendered.DocumentLink)
	}

	var inserts, deletes, texts, aligns int
	for _, batch := range fd.batches {
		for _, req := range batch {
			switch {
			case req.InsertTableRow != nil:
				inserts++
			case req.DeleteTableRow != nil:
				deletes++
			case req.InsertText != nil:
				texts++
			case req.UpdateParagraphStyle != nil:
				aligns++
			}
		}
	}
	if inserts != 2 {
		t.Errorf("inserted %d rows, want 2", inserts)
	}
	if deletes != 2 {
		t.Errorf("deleted %d rows, want 2 (template rows cleared)", deletes)
	}
	if texts != 12 {
		t.Errorf("inserted text into %d cells, want 12", texts)
	}
	// Quantity, Rate/hour and Amount are right-aligned per item row.
	if aligns != 6 {
		t.Errorf("aligned %d cells, want 6", aligns)
	}
}

func TestExchangeSectionUSD(t *testing.T) {
	fd := &fakeDocs{doc: tableDoc(schema.InvoiceTableSignature, 0)}
	ff := &fakeFiles{pdfID: "pdf-1"}
	r := NewRenderer(fd, ff, "out-folder")

	inv := sampleInvoice()
	inv.Items = nil
	inv.ExchangeRate = "1.0850"

	if _, err := r.RenderInvoice(context.Background(), "tmpl-1", "folder-1", inv, "USD"); err != nil {
		t.Fatal(err)
	}

	replacements := map[string]string{}
	for _, batch := range fd.batches {
		for _, req := range batch {
			if req.ReplaceAllText != nil {
				replacements[req.ReplaceAllText.ContainsText.Text] = req.ReplaceAllText.ReplaceText
			}
		}
	}
	if got := replacements["{Exchange Rate}"]; got != "1.0850" {
		t.Errorf("{Exchange Rate} = %q", got)
	}
	if got := replacements["{Total EUR}"]; got != "€105.99" {
		t.Errorf("{Total EUR} = %q", got)
	}
}

func TestExchangeSectionNonUSDBlanksParagraphs(t *testing.T) {
	doc := tableDoc(schema.InvoiceTableSignature, 0)
	doc.Body.Content = append(doc.Body.Content,
		&docs.StructuralElement{
			StartIndex: 100, EndIndex: 140,
			Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{
				{TextRun: &docs.TextRun{Content: "Exchange rate as of invoice date: {Exchange Rate}\n"}},
			}},
		},
		&docs.StructuralElement{
			StartIndex: 140, EndIndex: 170,
			Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{
				{TextRun: &docs.TextRun{Content: "EUR equivalent: {Total EUR}\n"}},
			}},
		},
	)

	fd := &fakeDocs{doc: doc}
	ff := &fakeFiles{pdfID: "pdf-1"}
	r := NewRenderer(fd, ff, "out-folder")

	inv := sampleInvoice()
	inv.Items = nil

	if _, err := r.RenderInvoice(context.Background(), "tmpl-1", "folder-1", inv, "EUR"); err != nil {
		t.Fatal(err)
	}

	var dels []*docs.Range
	for _, batch := range fd.batches {
		for _, req := range batch {
			if req.DeleteContentRange != nil {
				dels = append(dels, req.DeleteContentRange.Range)
			}
		}
	}
	if len(dels) != 2 {
		t.Fatalf("blanked %d paragraphs, want 2", len(dels))
	}
	// Later range first, and both keep the trailing newline.
	if dels[0].StartIndex != 140 || dels[0].EndIndex != 169 {
		t.Errorf("second paragraph range = [%d,%d)", dels[0].StartIndex, dels[0].EndIndex)
	}
	if dels[1].StartIndex != 100 || dels[1].EndIndex != 139 {
		t.Errorf("marker paragraph range = [%d,%d)", dels[1].StartIndex, dels[1].EndIndex)
	}
}

func TestRenderContractPlaceholders(t *testing.T) {
	fd := &fakeDocs{}
	ff := &fakeFiles{pdfID: "pdf-1", pdfLink: "https://drive/pdf-1"}
	r := NewRenderer(fd, ff, "out-folder")

	c := &models.Contract{
		Number:     "V-2024-01",
		Date:       "01.01.2024",
		ClientName: "Acme GmbH",
		OurCompany: "Our Company Ltd",
		Start:      "01.01.2024",
		End:        "31.12.2024",
		Fee:        "45000.00",
		Currency:   "€",
		TaxRate:    "19",
		Items: []models.LineItem{
			{"1", "Entwicklung", "01-06/2024", "30000.00"},
			{"2", "Support", "07-12/2024", "15000.00"},
		},
	}

	rendered, err := r.RenderContract(context.Background(), "tmpl-1", "folder-1", c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered.DocumentID != "doc-copy-1" {
		t.Errorf("DocumentID = %q", rendered.DocumentID)
	}

	replacements := map[string]string{}
	for _, batch := range fd.batches {
		for _, req := range batch {
			if req.ReplaceAllText != nil {
				replacements[req.ReplaceAllText.ContainsText.Text] = req.ReplaceAllText.ReplaceText
			}
		}
	}

	// Field tokens, including the localized ones.
	for token, want := range map[string]string{
		"{Vertragsnummer}": "V-2024-01",
		"{Datum}":          "01.01.2024",
		"{Kunde}":          "Acme GmbH",
		"{Beginn}":         "01.01.2024",
		"{Ende}":           "31.12.2024",
		"{Honorar}":        "€45000.00",
		"{Steuersatz}":     "19%",
		"{Auftragnehmer}":  "Our Company Ltd",
	} {
		if got := replacements[token]; got != want {
			t.Errorf("%s = %q, want %q", token, got, want)
		}
	}

	// Indexed item tokens for the two present items.
	for token, want := range map[string]string{
		"{Leistung-1}": "Entwicklung",
		"{Zeitraum-1}": "01-06/2024",
		"{Betrag-1}":   "30000.00",
		"{Leistung-2}": "Support",
		"{Zeitraum-2}": "07-12/2024",
		"{Betrag-2}":   "15000.00",
	} {
		if got := replacements[token]; got != want {
			t.Errorf("%s = %q, want %q", token, got, want)
		}
	}

	// Every unused index up to the capacity is blanked, not left visible.
	for n := 3; n <= schema.ContractItems.MaxRows; n++ {
		for cIdx := 0; cIdx < schema.ContractItemCellCount; cIdx++ {
			token := schema.ContractItemPlaceholder(cIdx, n)
			got, ok := replacements[token]
			if !ok {
				t.Errorf("no replacement issued for %s", token)
				continue
			}
			if got != "" {
				t.Errorf("%s = %q, want blanked", token, got)
			}
		}
	}

	// No table edits: contracts render by substitution only.
	for _, batch := range fd.batches {
		for _, req := range batch {
			if req.InsertTableRow != nil || req.DeleteTableRow != nil || req.InsertText != nil {
				t.Errorf("unexpected table edit request %+v", req)
			}
		}
	}
}

func TestRenderExportFailure(t *testing.T) {
	fd := &fakeDocs{doc: tableDoc(schema.InvoiceTableSignature, 0)}
	ff := &fakeFiles{exportErr: ErrExportFailed}
	r := NewRenderer(fd, ff, "out-folder")

	inv := sampleInvoice()
	inv.Items = nil

	_, err := r.RenderInvoice(context.Background(), "tmpl-1", "folder-1", inv, "EUR")
	if !errors.Is(err, ErrExportFailed) {
		t.Errorf("error = %v, want ErrExportFailed", err)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatMoney("$", "115"); got != "$115.00" {
		t.Errorf("formatMoney = %q", got)
	}
	if got := formatPercent("15"); got != "15%" {
		t.Errorf("formatPercent = %q", got)
	}
	if got := formatRate("1.085"); got != "1.0850" {
		t.Errorf("formatRate = %q", got)
	}
	if got := eurEquivalent("115.00", "0"); got != "" {
		t.Errorf("eurEquivalent by zero = %q", got)
	}
}
