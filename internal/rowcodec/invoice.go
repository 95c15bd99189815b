package rowcodec

import (
	"fmt"

	"billgen/internal/schema"
	"billgen/pkg/models"
)

// EncodeInvoice flattens an invoice into a sheet row matching the live
// header. The result is exactly fixed-width: header columns followed by the
// full reserved item block.
func EncodeInvoice(inv *models.Invoice, header []string) ([]string, error) {
	const op = "EncodeInvoice"

	idx := fieldIndex(header)
	row := make([]string, rowWidth(schema.InvoiceItems))

	fields := map[string]string{
		"ID":                 inv.ID,
		"Project":            inv.Project,
		"Invoice Number":     inv.Number,
		"Date":               inv.Date,
		"Due Date":           inv.DueDate,
		"Client Name":        inv.ClientName,
		"Client Address":     inv.ClientAddress,
		"Client VAT ID":      inv.ClientVATID,
		"Currency":           inv.Currency,
		"Subtotal":           inv.Subtotal,
		"Tax Rate":           inv.TaxRate,
		"Tax Amount":         inv.TaxAmount,
		"Total":              inv.Total,
		"Payment Terms":      inv.PaymentTerms,
		"Bank Account":       inv.BankAccount,
		"Bank Correspondent": inv.BankCorrespondent,
		"Our Company":        inv.OurCompany,
		"Template":           inv.Template,
		"Notes":              inv.Notes,
		"Document Link":      inv.DocumentLink,
		"PDF Link":           inv.PDFLink,
	}
	for name, value := range fields {
		if err := put(row, idx, name, value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	copy(row[schema.InvoiceItems.StartColumn:], encodeItems(inv.Items, schema.InvoiceItems, schema.InvoiceItemColumns))
	return row, nil
}

// DecodeInvoice parses a sheet row back into an invoice. Absent cells come
// back as empty strings; the item block is read positionally per the
// declared layout.
func DecodeInvoice(row []string, header []string) *models.Invoice {
	idx := fieldIndex(header)
	return &models.Invoice{
		ID:                get(row, idx, "ID"),
		Project:           get(row, idx, "Project"),
		Number:            get(row, idx, "Invoice Number"),
		Date:              get(row, idx, "Date"),
		DueDate:           get(row, idx, "Due Date"),
		ClientName:        get(row, idx, "Client Name"),
		ClientAddress:     get(row, idx, "Client Address"),
		ClientVATID:       get(row, idx, "Client VAT ID"),
		Currency:          get(row, idx, "Currency"),
		Subtotal:          get(row, idx, "Subtotal"),
		TaxRate:           get(row, idx, "Tax Rate"),
		TaxAmount:         get(row, idx, "Tax Amount"),
		Total:             get(row, idx, "Total"),
		PaymentTerms:      get(row, idx, "Payment Terms"),
		BankAccount:       get(row, idx, "Bank Account"),
		BankCorrespondent: get(row, idx, "Bank Correspondent"),
		OurCompany:        get(row, idx, "Our Company"),
		Template:          get(row, idx, "Template"),
		Notes:             get(row, idx, "Notes"),
		DocumentLink:      get(row, idx, "Document Link"),
		PDFLink:           get(row, idx, "PDF Link"),
		Items:             decodeItems(row, schema.InvoiceItems),
	}
}
