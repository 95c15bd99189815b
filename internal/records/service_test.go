package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"billgen/internal/cache"
	"billgen/internal/drive"
	"billgen/internal/render"
	"billgen/internal/schema"
	"billgen/pkg/models"
)

type fakeTable struct {
	header  []string
	rows    [][]string
	reads   int
	appends int
}

func (f *fakeTable) Header(ctx context.Context) ([]string, error) { return f.header, nil }

func (f *fakeTable) Rows(ctx context.Context) ([][]string, error) {
	f.reads++
	return f.rows, nil
}

func (f *fakeTable) Append(ctx context.Context, row []string) error {
	f.appends++
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTable) Update(ctx context.Context, rowIndex int, row []string) error {
	if rowIndex < 0 || rowIndex >= len(f.rows) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	f.rows[rowIndex] = row
	return nil
}

func (f *fakeTable) Delete(ctx context.Context, rowIndex int) error {
	if rowIndex < 0 || rowIndex >= len(f.rows) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	f.rows = append(f.rows[:rowIndex], f.rows[rowIndex+1:]...)
	return nil
}

type fakeResolver struct {
	cfg      *models.ProjectConfig
	cfgErr   error
	folderID string
}

func (f *fakeResolver) ResolveProjectConfig(ctx context.Context, name string) (*models.ProjectConfig, error) {
	return f.cfg, f.cfgErr
}

func (f *fakeResolver) ResolveStorageFolder(ctx context.Context, name string) (string, error) {
	return f.folderID, nil
}

type fakeRenderer struct {
	renderErr error
	renders   int
}

func (f *fakeRenderer) rendered() (*render.Rendered, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	f.renders++
	docID := fmt.Sprintf("doc4EfGhIjKlMnOpQrStUvWxYz%02d", f.renders)
	pdfID := fmt.Sprintf("pdf4EfGhIjKlMnOpQrStUvWxYz%02d", f.renders)
	return &render.Rendered{
		DocumentID:   docID,
		DocumentLink: drive.DocumentLink(docID),
		PDFID:        pdfID,
		PDFLink:      drive.FileLink(pdfID),
	}, nil
}

func (f *fakeRenderer) RenderInvoice(ctx context.Context, templateID, folderID string, inv *models.Invoice, currencyCode string) (*render.Rendered, error) {
	return f.rendered()
}

func (f *fakeRenderer) RenderCreditNote(ctx context.Context, templateID, folderID string, cn *models.CreditNote, currencyCode string) (*render.Rendered, error) {
	return f.rendered()
}

func (f *fakeRenderer) RenderContract(ctx context.Context, templateID, folderID string, c *models.Contract) (*render.Rendered, error) {
	return f.rendered()
}

type fakeFiles struct {
	deleted []string
	fail    map[string]error
}

func (f *fakeFiles) Delete(ctx context.Context, fileID string) error {
	if err, ok := f.fail[fileID]; ok {
		return err
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func testConfig() *models.ProjectConfig {
	return &models.ProjectConfig{
		Name:         "Acme Platform",
		ClientName:   "Acme GmbH",
		TaxRate:      "15",
		Currency:     "$",
		CurrencyCode: "USD",
		TemplateName: "Invoice EN",
		TemplateID:   "tmpl-1AbCdEfGhIjKlMnOpQrStUvWx",
		OurCompany:   "Our Company Ltd",
	}
}

func testService() (*Service, *fakeTable, *fakeTable, *fakeTable, *fakeRenderer, *fakeFiles) {
	invoices := &fakeTable{header: schema.FullHeader(schema.InvoiceColumns, schema.InvoiceItemColumns, schema.InvoiceItems, "Row")}
	creditNotes := &fakeTable{header: schema.FullHeader(schema.CreditNoteColumns, schema.CreditNoteItemColumns, schema.CreditNoteItems, "Row")}
	contracts := &fakeTable{header: schema.FullHeader(schema.ContractColumnOrder, schema.ContractItemColumns, schema.ContractItems, "Pos")}

	renderer := &fakeRenderer{}
	files := &fakeFiles{fail: map[string]error{}}
	resolver := &fakeResolver{cfg: testConfig(), folderID: "folder-1"}

	svc := NewService(invoices, creditNotes, contracts, resolver, renderer, files, cache.New(300*time.Second))
	return svc, invoices, creditNotes, contracts, renderer, files
}

func newInvoice() *models.Invoice {
	return &models.Invoice{
		Project: "Acme Platform",
		Number:  "2024-017",
		Date:    "15.03.2024",
		DueDate: "29.03.2024",
		Items: []models.LineItem{
			{"", "Development", "01-03/2024", "40", "90.00", "3600.00"},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	svc, invoices, _, _, _, _ := testService()

	res := svc.CreateInvoice(context.Background(), newInvoice())
	if !res.Success {
		t.Fatalf("create failed: %s", res.Message)
	}
	if res.ID == "" {
		t.Error("expected a generated id")
	}
	if res.DocumentLink == "" || res.PDFLink == "" {
		t.Error("expected artifact links in result")
	}
	if invoices.appends != 1 {
		t.Fatalf("appends = %d, want 1", invoices.appends)
	}

	// The persisted row carries the back-filled links and computed totals.
	got := svc.GetInvoice(context.Background(), res.ID)
	if got == nil {
		t.Fatal("created invoice not found by id")
	}
	if got.DocumentLink != res.DocumentLink || got.PDFLink != res.PDFLink {
		t.Error("artifact links not back-filled into the row")
	}
	if got.Subtotal != "3600.00" || got.TaxAmount != "540.00" || got.Total != "4140.00" {
		t.Errorf("computed amounts = %s / %s / %s", got.Subtotal, got.TaxAmount, got.Total)
	}
	if got.ClientName != "Acme GmbH" || got.Currency != "$" {
		t.Errorf("config fields not applied: %q %q", got.ClientName, got.Currency)
	}
}

func TestComputedTax(t *testing.T) {
	svc, _, _, _, _, _ := testService()

	inv := newInvoice()
	inv.Subtotal = "100.00"
	res := svc.CreateInvoice(context.Background(), inv)
	if !res.Success {
		t.Fatal(res.Message)
	}

	got := svc.GetInvoice(context.Background(), res.ID)
	if got.TaxAmount != "15.00" {
		t.Errorf("TaxAmount = %q, want 15.00", got.TaxAmount)
	}
	if got.Total != "115.00" {
		t.Errorf("Total = %q, want 115.00", got.Total)
	}
}

func TestCreateInvoiceValidationAbortsBeforeSideEffects(t *testing.T) {
	svc, invoices, _, _, renderer, _ := testService()

	inv := newInvoice()
	inv.Items = nil

	res := svc.CreateInvoice(context.Background(), inv)
	if res.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(res.Message, "items") {
		t.Errorf("message %q does not name the field", res.Message)
	}
	if invoices.appends != 0 || renderer.renders != 0 {
		t.Error("validation failure must abort before any side effect")
	}
}

func TestCreateInvoiceRenderFailureLeavesRow(t *testing.T) {
	svc, invoices, _, _, renderer, _ := testService()
	renderer.renderErr = errors.New("conversion backend unavailable")

	res := svc.CreateInvoice(context.Background(), newInvoice())
	if res.Success {
		t.Fatal("expected failure")
	}
	// The partially-written row stays, with blank artifact links.
	if len(invoices.rows) != 1 {
		t.Fatalf("rows = %d, want the persisted row to remain", len(invoices.rows))
	}
	invs := svc.ListInvoices(context.Background())
	if len(invs) != 1 || invs[0].DocumentLink != "" || invs[0].PDFLink != "" {
		t.Error("expected one row with blank artifact links")
	}
}

func TestUpdateInvoiceTargetsRowByID(t *testing.T) {
	svc, invoices, _, _, _, _ := testService()
	ctx := context.Background()

	first := svc.CreateInvoice(ctx, newInvoice())
	second := newInvoice()
	second.Number = "2024-018"
	svc.CreateInvoice(ctx, second)
	third := newInvoice()
	third.Number = "2024-019"
	res3 := svc.CreateInvoice(ctx, third)

	// Remove the first row so positions shift under the third record.
	if res := svc.DeleteInvoice(ctx, first.ID); !res.Success {
		t.Fatal(res.Message)
	}
	if len(invoices.rows) != 2 {
		t.Fatalf("rows = %d after delete", len(invoices.rows))
	}

	upd := newInvoice()
	upd.ID = res3.ID
	upd.Number = "2024-019R"
	if res := svc.UpdateInvoice(ctx, upd); !res.Success {
		t.Fatal(res.Message)
	}

	got := svc.GetInvoice(ctx, res3.ID)
	if got == nil || got.Number != "2024-019R" {
		t.Fatalf("update hit the wrong row: %+v", got)
	}
	// The other remaining record is untouched.
	if other := svc.GetInvoice(ctx, findIDByNumber(t, svc, "2024-018")); other == nil {
		t.Fatal("unrelated record disappeared")
	}
}

func findIDByNumber(t *testing.T, svc *Service, number string) string {
	t.Helper()
	for _, inv := range svc.ListInvoices(context.Background()) {
		if inv.Number == number {
			return inv.ID
		}
	}
	t.Fatalf("no invoice numbered %s", number)
	return ""
}

func TestUpdateInvoiceInvalidatesOldArtifacts(t *testing.T) {
	svc, _, _, _, _, files := testService()
	ctx := context.Background()

	res := svc.CreateInvoice(ctx, newInvoice())
	if !res.Success {
		t.Fatal(res.Message)
	}

	upd := newInvoice()
	upd.ID = res.ID
	if res := svc.UpdateInvoice(ctx, upd); !res.Success {
		t.Fatal(res.Message)
	}

	if len(files.deleted) != 2 {
		t.Errorf("deleted %d artifacts, want both old document and PDF", len(files.deleted))
	}
}

func TestDeleteInvoiceWithBrokenArtifactsSucceedsWithNote(t *testing.T) {
	svc, invoices, _, _, _, files := testService()
	ctx := context.Background()

	res := svc.CreateInvoice(ctx, newInvoice())
	if !res.Success {
		t.Fatal(res.Message)
	}

	// Both artifact files are already gone on the storage side.
	for _, link := range []string{res.DocumentLink, res.PDFLink} {
		files.fail[fileIDOf(link)] = errors.New("file not found")
	}

	del := svc.DeleteInvoice(ctx, res.ID)
	if !del.Success {
		t.Fatalf("delete must succeed despite cleanup failures: %s", del.Message)
	}
	if len(del.Warnings) != 2 {
		t.Errorf("warnings = %d, want 2", len(del.Warnings))
	}
	if !strings.Contains(del.Message, "cleanup incomplete") {
		t.Errorf("message %q lacks the cleanup note", del.Message)
	}
	if len(invoices.rows) != 0 {
		t.Error("row must be removed regardless of cleanup outcome")
	}
}

func fileIDOf(link string) string {
	// Mirror of the link format produced by the fake renderer.
	start := strings.LastIndex(link, "/d/")
	rest := link[start+3:]
	end := strings.IndexByte(rest, '/')
	return rest[:end]
}

func TestDeleteUnknownInvoice(t *testing.T) {
	svc, _, _, _, _, _ := testService()
	res := svc.DeleteInvoice(context.Background(), "nope")
	if res.Success {
		t.Fatal("expected not-found failure")
	}
}

func TestListInvoicesUsesCache(t *testing.T) {
	svc, invoices, _, _, _, _ := testService()
	ctx := context.Background()

	res := svc.CreateInvoice(ctx, newInvoice())
	if !res.Success {
		t.Fatal(res.Message)
	}

	first := svc.ListInvoices(ctx)
	readsAfterFirst := invoices.reads
	second := svc.ListInvoices(ctx)
	if invoices.reads != readsAfterFirst {
		t.Error("second list hit storage despite warm cache")
	}
	if len(first) != len(second) || first[0].ID != second[0].ID {
		t.Error("cached list differs from uncached list")
	}

	// Any mutation invalidates the list.
	other := newInvoice()
	other.Number = "2024-018"
	svc.CreateInvoice(ctx, other)

	refreshed := svc.ListInvoices(ctx)
	if len(refreshed) != 2 {
		t.Errorf("refreshed list has %d entries, want 2", len(refreshed))
	}
}

func TestGetInvoiceNotFoundIsNil(t *testing.T) {
	svc, _, _, _, _, _ := testService()
	if got := svc.GetInvoice(context.Background(), "missing"); got != nil {
		t.Errorf("GetInvoice = %+v, want nil sentinel", got)
	}
}

func TestCreditNoteLifecycle(t *testing.T) {
	svc, _, creditNotes, _, _, _ := testService()
	ctx := context.Background()

	cn := &models.CreditNote{
		Project: "Acme Platform",
		Number:  "CN-01",
		Date:    "20.03.2024",
		Reason:  "Overbilled hours",
		Items:   []models.LineItem{{"", "Correction", "02/2024", "-238.00"}},
	}
	res := svc.CreateCreditNote(ctx, cn)
	if !res.Success {
		t.Fatal(res.Message)
	}
	if len(creditNotes.rows) != 1 {
		t.Fatal("credit note row not persisted")
	}

	got := svc.GetCreditNote(ctx, res.ID)
	if got == nil || got.Reason != "Overbilled hours" {
		t.Fatalf("round trip: %+v", got)
	}

	if res := svc.DeleteCreditNote(ctx, res.ID); !res.Success {
		t.Fatal(res.Message)
	}
	if len(creditNotes.rows) != 0 {
		t.Error("credit note row not removed")
	}
}

func TestContractLifecycle(t *testing.T) {
	svc, _, _, contracts, _, _ := testService()
	ctx := context.Background()

	c := &models.Contract{
		Project: "Acme Platform",
		Number:  "V-2024-01",
		Date:    "01.01.2024",
		Start:   "01.01.2024",
		End:     "31.12.2024",
		Fee:     "45000",
		Items:   []models.LineItem{{"", "Entwicklung", "01-06/2024", "45000.00"}},
	}
	res := svc.CreateContract(ctx, c)
	if !res.Success {
		t.Fatal(res.Message)
	}
	if len(contracts.rows) != 1 {
		t.Fatal("contract row not persisted")
	}

	got := svc.GetContract(ctx, res.ID)
	if got == nil {
		t.Fatal("contract not found by id")
	}
	if got.Fee != "45000.00" {
		t.Errorf("Fee = %q, want normalized 2-decimal form", got.Fee)
	}

	// Missing period bounds fail validation.
	bad := &models.Contract{Project: "Acme Platform", Number: "V-2", Date: "x", Fee: "1"}
	if res := svc.CreateContract(ctx, bad); res.Success {
		t.Error("expected validation failure for missing start/end")
	}
}

func TestValidateSchemas(t *testing.T) {
	svc, invoices, _, _, _, _ := testService()

	if err := svc.ValidateSchemas(context.Background()); err != nil {
		t.Fatalf("valid headers rejected: %v", err)
	}

	// A truncated invoice header must be rejected at startup.
	invoices.header = invoices.header[:30]
	if err := svc.ValidateSchemas(context.Background()); !errors.Is(err, schema.ErrHeaderMismatch) {
		t.Errorf("error = %v, want ErrHeaderMismatch", err)
	}
}
