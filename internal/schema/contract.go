package schema

import "fmt"

// ContractField enumerates the logical fields of a contract record. The
// contract sheet carries localized (German) column labels, so fields are
// bound to physical columns through ContractColumnLabels instead of fixed
// positions, and to document tokens through ContractPlaceholders.
type ContractField int

const (
	FieldContractID ContractField = iota
	FieldContractProject
	FieldContractNumber
	FieldContractDate
	FieldContractClientName
	FieldContractClientAddress
	FieldContractStart
	FieldContractEnd
	FieldContractFee
	FieldContractCurrency
	FieldContractTaxRate
	FieldContractOurCompany
	FieldContractTemplate
	FieldContractDocumentLink
	FieldContractPDFLink
)

// ContractColumnLabels maps each logical field to its sheet column label.
var ContractColumnLabels = map[ContractField]string{
	FieldContractID:            "ID",
	FieldContractProject:       "Projekt",
	FieldContractNumber:        "Vertragsnummer",
	FieldContractDate:          "Datum",
	FieldContractClientName:    "Kunde",
	FieldContractClientAddress: "Anschrift",
	FieldContractStart:         "Beginn",
	FieldContractEnd:           "Ende",
	FieldContractFee:           "Honorar",
	FieldContractCurrency:      "Währung",
	FieldContractTaxRate:       "Steuersatz",
	FieldContractOurCompany:    "Auftragnehmer",
	FieldContractTemplate:      "Vorlage",
	FieldContractDocumentLink:  "Dokument",
	FieldContractPDFLink:       "PDF",
}

// ContractColumnOrder is the storage order of the contract header columns.
// Labels may be localized but the set and order are fixed.
var ContractColumnOrder = []string{
	"ID", "Projekt", "Vertragsnummer", "Datum", "Kunde", "Anschrift",
	"Beginn", "Ende", "Honorar", "Währung", "Steuersatz",
	"Auftragnehmer", "Vorlage", "Dokument", "PDF",
}

// ContractPlaceholders maps each logical field to the literal token replaced
// in the contract template body.
var ContractPlaceholders = map[ContractField]string{
	FieldContractNumber:        "{Vertragsnummer}",
	FieldContractDate:          "{Datum}",
	FieldContractClientName:    "{Kunde}",
	FieldContractClientAddress: "{Anschrift}",
	FieldContractStart:         "{Beginn}",
	FieldContractEnd:           "{Ende}",
	FieldContractFee:           "{Honorar}",
	FieldContractCurrency:      "{Währung}",
	FieldContractTaxRate:       "{Steuersatz}",
	FieldContractOurCompany:    "{Auftragnehmer}",
	FieldContractProject:       "{Projekt}",
}

// Contract item tokens are keyed by the 1-based row index, one token per
// item cell beyond the position: {Leistung-n}, {Zeitraum-n}, {Betrag-n}.
var contractItemTokens = []string{"Leistung", "Zeitraum", "Betrag"}

// ContractItemPlaceholder builds the indexed token for one item cell,
// e.g. (1, 2) -> "{Zeitraum-2}". cell is the item cell index past the
// position column (0 = Leistung).
func ContractItemPlaceholder(cell, row int) string {
	return fmt.Sprintf("{%s-%d}", contractItemTokens[cell], row)
}

// ContractItemCellCount is the number of placeholder-bearing cells per
// contract item (the position cell has no token).
const ContractItemCellCount = 3

// ValidateContractHeader checks that every mapped contract column label is
// present in the live header. Contracts are header-addressed, so a missing
// label would silently drop a field; fail at startup instead.
func ValidateContractHeader(header []string) error {
	index := make(map[string]bool, len(header))
	for _, h := range header {
		index[h] = true
	}
	for field, label := range ContractColumnLabels {
		if !index[label] {
			return fmt.Errorf("%w: contract sheet is missing column %q (field %d)",
				ErrHeaderMismatch, label, int(field))
		}
	}
	return nil
}
