package rowcodec

import (
	"fmt"

	"billgen/internal/schema"
	"billgen/pkg/models"
)

// EncodeCreditNote flattens a credit note into a sheet row matching the
// live header.
func EncodeCreditNote(cn *models.CreditNote, header []string) ([]string, error) {
	const op = "EncodeCreditNote"

	idx := fieldIndex(header)
	row := make([]string, rowWidth(schema.CreditNoteItems))

	fields := map[string]string{
		"ID":                 cn.ID,
		"Project":            cn.Project,
		"Credit Note Number": cn.Number,
		"Date":               cn.Date,
		"Client Name":        cn.ClientName,
		"Client Address":     cn.ClientAddress,
		"Client VAT ID":      cn.ClientVATID,
		"Currency":           cn.Currency,
		"Subtotal":           cn.Subtotal,
		"Tax Rate":           cn.TaxRate,
		"Tax Amount":         cn.TaxAmount,
		"Total":              cn.Total,
		"Reason":             cn.Reason,
		"Our Company":        cn.OurCompany,
		"Template":           cn.Template,
		"Notes":              cn.Notes,
		"Document Link":      cn.DocumentLink,
		"PDF Link":           cn.PDFLink,
	}
	for name, value := range fields {
		if err := put(row, idx, name, value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	copy(row[schema.CreditNoteItems.StartColumn:], encodeItems(cn.Items, schema.CreditNoteItems, schema.CreditNoteItemColumns))
	return row, nil
}

// DecodeCreditNote parses a sheet row back into a credit note.
func DecodeCreditNote(row []string, header []string) *models.CreditNote {
	idx := fieldIndex(header)
	return &models.CreditNote{
		ID:            get(row, idx, "ID"),
		Project:       get(row, idx, "Project"),
		Number:        get(row, idx, "Credit Note Number"),
		Date:          get(row, idx, "Date"),
		ClientName:    get(row, idx, "Client Name"),
		ClientAddress: get(row, idx, "Client Address"),
		ClientVATID:   get(row, idx, "Client VAT ID"),
		Currency:      get(row, idx, "Currency"),
		Subtotal:      get(row, idx, "Subtotal"),
		TaxRate:       get(row, idx, "Tax Rate"),
		TaxAmount:     get(row, idx, "Tax Amount"),
		Total:         get(row, idx, "Total"),
		Reason:        get(row, idx, "Reason"),
		OurCompany:    get(row, idx, "Our Company"),
		Template:      get(row, idx, "Template"),
		Notes:         get(row, idx, "Notes"),
		DocumentLink:  get(row, idx, "Document Link"),
		PDFLink:       get(row, idx, "PDF Link"),
		Items:         decodeItems(row, schema.CreditNoteItems),
	}
}
