package rowcodec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"billgen/internal/schema"
	"billgen/pkg/models"
)

func invoiceHeader() []string {
	return schema.FullHeader(schema.InvoiceColumns, schema.InvoiceItemColumns, schema.InvoiceItems, "Row")
}

func creditNoteHeader() []string {
	return schema.FullHeader(schema.CreditNoteColumns, schema.CreditNoteItemColumns, schema.CreditNoteItems, "Row")
}

func contractHeader() []string {
	return schema.FullHeader(schema.ContractColumnOrder, schema.ContractItemColumns, schema.ContractItems, "Pos")
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                "inv-0001",
		Project:           "Acme Platform",
		Number:            "2024-017",
		Date:              "15.03.2024",
		DueDate:           "29.03.2024",
		ClientName:        "Acme GmbH",
		ClientAddress:     "1 Main St, Berlin",
		ClientVATID:       "DE123456789",
		Currency:          "$",
		Subtotal:          "100.00",
		TaxRate:           "15",
		TaxAmount:         "15.00",
		Total:             "115.00",
		PaymentTerms:      "14 days net",
		BankAccount:       "Deutsche Bank AG",
		BankCorrespondent: "Citibank N.A.",
		OurCompany:        "Our Company Ltd",
		Template:          "Invoice EN",
		Notes:             "",
		Items: []models.LineItem{
			{"1", "Development", "01-03/2024", "40", "90.00", "3600.00"},
			{"2", "Support", "03/2024", "5", "80.00", "400.00"},
		},
	}
}

func TestInvoiceRoundTrip(t *testing.T) {
	header := invoiceHeader()
	inv := sampleInvoice()

	row, err := EncodeInvoice(inv, header)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(row) != len(schema.InvoiceColumns)+schema.InvoiceItems.Width() {
		t.Fatalf("row width = %d", len(row))
	}

	got := DecodeInvoice(row, header)
	if !reflect.DeepEqual(got, inv) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, inv)
	}
}

func TestEncodePositionRestamp(t *testing.T) {
	header := invoiceHeader()
	inv := sampleInvoice()
	// Caller-supplied positions are garbage on purpose.
	inv.Items[0][0] = "99"
	inv.Items[1][0] = ""

	row, err := EncodeInvoice(inv, header)
	if err != nil {
		t.Fatal(err)
	}

	start := schema.InvoiceItems.StartColumn
	if row[start] != "1" {
		t.Errorf("first item position = %q, want restamped 1", row[start])
	}
	if row[start+schema.InvoiceItems.ColumnsPerItem] != "2" {
		t.Errorf("second item position = %q, want restamped 2", row[start+6])
	}
}

func TestEncodePeriodTextEscape(t *testing.T) {
	header := invoiceHeader()
	inv := sampleInvoice()

	row, err := EncodeInvoice(inv, header)
	if err != nil {
		t.Fatal(err)
	}

	// Period is the third item cell; the storage engine would read
	// "01-03/2024" as a date without the escape.
	period := row[schema.InvoiceItems.StartColumn+2]
	if !strings.HasPrefix(period, "'") {
		t.Errorf("period cell %q lacks text escape", period)
	}

	// Decode strips the escape again.
	got := DecodeInvoice(row, header)
	if got.Items[0][2] != "01-03/2024" {
		t.Errorf("decoded period = %q", got.Items[0][2])
	}
}

func TestEncodeTruncatesToMaxRows(t *testing.T) {
	header := invoiceHeader()
	inv := sampleInvoice()
	inv.Items = nil
	for i := 0; i < schema.InvoiceItems.MaxRows+4; i++ {
		inv.Items = append(inv.Items, models.LineItem{
			"", fmt.Sprintf("Service %d", i+1), "", "1", "10.00", "10.00",
		})
	}

	row, err := EncodeInvoice(inv, header)
	if err != nil {
		t.Fatal(err)
	}
	if len(row) != len(schema.InvoiceColumns)+schema.InvoiceItems.Width() {
		t.Fatalf("row width grew past the reserved block: %d", len(row))
	}

	got := DecodeInvoice(row, header)
	if len(got.Items) != schema.InvoiceItems.MaxRows {
		t.Errorf("decoded %d items, want MaxRows=%d", len(got.Items), schema.InvoiceItems.MaxRows)
	}
}

func TestDecodeSkipsBlankSlots(t *testing.T) {
	header := invoiceHeader()
	inv := sampleInvoice()
	inv.Items = inv.Items[:1]

	row, err := EncodeInvoice(inv, header)
	if err != nil {
		t.Fatal(err)
	}

	got := DecodeInvoice(row, header)
	if len(got.Items) != 1 {
		t.Errorf("decoded %d items, want 1 (no padding ghosts)", len(got.Items))
	}
}

func TestEncodeReorderedHeader(t *testing.T) {
	header := invoiceHeader()
	// Swap two fixed columns; the codec reads the live header, so encode
	// must follow the new positions.
	header[0], header[1] = header[1], header[0]

	inv := sampleInvoice()
	row, err := EncodeInvoice(inv, header)
	if err != nil {
		t.Fatal(err)
	}
	if row[1] != inv.ID || row[0] != inv.Project {
		t.Errorf("encode ignored reordered header: row[0]=%q row[1]=%q", row[0], row[1])
	}
}

func TestEncodeMissingColumn(t *testing.T) {
	header := invoiceHeader()
	header[2] = "Renamed Column"

	_, err := EncodeInvoice(sampleInvoice(), header)
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("error = %v, want ErrMissingColumn", err)
	}
}

func TestCreditNoteRoundTrip(t *testing.T) {
	header := creditNoteHeader()
	cn := &models.CreditNote{
		ID:         "cn-0001",
		Project:    "Acme Platform",
		Number:     "CN-2024-003",
		Date:       "20.03.2024",
		ClientName: "Acme GmbH",
		Currency:   "€",
		Subtotal:   "-200.00",
		TaxRate:    "19",
		TaxAmount:  "-38.00",
		Total:      "-238.00",
		Reason:     "Overbilled hours",
		OurCompany: "Our Company Ltd",
		Template:   "Credit Note EN",
		Items: []models.LineItem{
			{"1", "Correction", "02/2024", "-238.00"},
		},
	}

	row, err := EncodeCreditNote(cn, header)
	if err != nil {
		t.Fatal(err)
	}
	got := DecodeCreditNote(row, header)
	if !reflect.DeepEqual(got, cn) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cn)
	}
}

func TestContractRoundTrip(t *testing.T) {
	header := contractHeader()
	c := &models.Contract{
		ID:            "ct-0001",
		Project:       "Acme Platform",
		Number:        "V-2024-01",
		Date:          "01.01.2024",
		ClientName:    "Acme GmbH",
		ClientAddress: "1 Main St, Berlin",
		Start:         "01.01.2024",
		End:           "31.12.2024",
		Fee:           "90.00",
		Currency:      "€",
		TaxRate:       "19",
		OurCompany:    "Our Company Ltd",
		Template:      "Vertrag DE",
		Items: []models.LineItem{
			{"1", "Entwicklung", "01-06/2024", "45000.00"},
			{"2", "Wartung", "07-12/2024", "12000.00"},
		},
	}

	row, err := EncodeContract(c, header)
	if err != nil {
		t.Fatal(err)
	}
	got := DecodeContract(row, header)
	if !reflect.DeepEqual(got, c) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, c)
	}
}

func TestFindByID(t *testing.T) {
	rows := [][]string{
		{"inv-0001", "Acme"},
		{"inv-0002", "Other"},
		{"inv-0003", "Third"},
	}

	i, ok := FindByID(rows, 0, "inv-0002")
	if !ok || i != 1 {
		t.Errorf("FindByID = (%d, %v), want (1, true)", i, ok)
	}

	// Absence is a distinct sentinel, not a zero-value record.
	if _, ok := FindByID(rows, 0, "inv-9999"); ok {
		t.Error("expected not-found for unknown id")
	}

	// Positions shift after a delete; the id still resolves.
	rows = append(rows[:1], rows[2:]...)
	i, ok = FindByID(rows, 0, "inv-0003")
	if !ok || i != 1 {
		t.Errorf("after delete FindByID = (%d, %v), want (1, true)", i, ok)
	}
}
