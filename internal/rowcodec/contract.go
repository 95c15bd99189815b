package rowcodec

import (
	"fmt"

	"billgen/internal/schema"
	"billgen/pkg/models"
)

// EncodeContract flattens a contract into a sheet row. Contract columns
// carry localized labels, so fields are placed through the typed
// field→label mapping instead of literal names.
func EncodeContract(c *models.Contract, header []string) ([]string, error) {
	const op = "EncodeContract"

	idx := fieldIndex(header)
	row := make([]string, rowWidth(schema.ContractItems))

	fields := map[schema.ContractField]string{
		schema.FieldContractID:            c.ID,
		schema.FieldContractProject:       c.Project,
		schema.FieldContractNumber:        c.Number,
		schema.FieldContractDate:          c.Date,
		schema.FieldContractClientName:    c.ClientName,
		schema.FieldContractClientAddress: c.ClientAddress,
		schema.FieldContractStart:         c.Start,
		schema.FieldContractEnd:           c.End,
		schema.FieldContractFee:           c.Fee,
		schema.FieldContractCurrency:      c.Currency,
		schema.FieldContractTaxRate:       c.TaxRate,
		schema.FieldContractOurCompany:    c.OurCompany,
		schema.FieldContractTemplate:      c.Template,
		schema.FieldContractDocumentLink:  c.DocumentLink,
		schema.FieldContractPDFLink:       c.PDFLink,
	}
	for field, value := range fields {
		if err := put(row, idx, schema.ContractColumnLabels[field], value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	copy(row[schema.ContractItems.StartColumn:], encodeItems(c.Items, schema.ContractItems, schema.ContractItemColumns))
	return row, nil
}

// DecodeContract parses a sheet row back into a contract.
func DecodeContract(row []string, header []string) *models.Contract {
	idx := fieldIndex(header)
	field := func(f schema.ContractField) string {
		return get(row, idx, schema.ContractColumnLabels[f])
	}
	return &models.Contract{
		ID:            field(schema.FieldContractID),
		Project:       field(schema.FieldContractProject),
		Number:        field(schema.FieldContractNumber),
		Date:          field(schema.FieldContractDate),
		ClientName:    field(schema.FieldContractClientName),
		ClientAddress: field(schema.FieldContractClientAddress),
		Start:         field(schema.FieldContractStart),
		End:           field(schema.FieldContractEnd),
		Fee:           field(schema.FieldContractFee),
		Currency:      field(schema.FieldContractCurrency),
		TaxRate:       field(schema.FieldContractTaxRate),
		OurCompany:    field(schema.FieldContractOurCompany),
		Template:      field(schema.FieldContractTemplate),
		DocumentLink:  field(schema.FieldContractDocumentLink),
		PDFLink:       field(schema.FieldContractPDFLink),
		Items:         decodeItems(row, schema.ContractItems),
	}
}
