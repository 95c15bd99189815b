// Package projects resolves a project name against the reference sheet into
// a fully populated ProjectConfig: client identity, normalized tax rate,
// currency symbol, resolved template id and full bank texts.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"billgen/internal/drive"
	"billgen/internal/logger"
	"billgen/pkg/models"
)

// Resolution failures, distinct so callers can message precisely.
var (
	// ErrProjectNotFound is returned when no reference row matches the name.
	ErrProjectNotFound = errors.New("project not found in reference table")

	// ErrNoTemplateName is returned when the project row has a blank
	// template selection.
	ErrNoTemplateName = errors.New("project has no template name configured")

	// ErrNoTemplateFound is returned when the selected template name does
	// not resolve to a template id.
	ErrNoTemplateFound = errors.New("template name does not resolve to a template id")
)

// Reference sheet column positions. Columns 0-11 describe a project; the
// trailing registry columns (12-15) hold template and bank lookup pairs that
// are independent of the project rows beside them.
const (
	colProject = iota
	colClientName
	colClientAddress
	colClientVATID
	colTaxRate
	colCurrencyCode
	colPaymentTerms
	colTemplate
	colBankCode
	colCorrespondentCode
	colOurCompany
	colFolder
	colTemplateName
	colTemplateID
	colBankShort
	colBankFull
)

// currencySymbols resolves an ISO currency code to its display symbol.
// Unknown codes fall back to the code itself.
var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF",
}

// currencyAliases maps symbol and name variants found in hand-edited cells
// back to their ISO code.
var currencyAliases = map[string]string{
	"€":    "EUR",
	"EURO": "EUR",
	"$":    "USD",
	"US$":  "USD",
	"£":    "GBP",
	"¥":    "JPY",
}

// RowReader is the slice of the sheet API the resolver needs.
type RowReader interface {
	Rows(ctx context.Context) ([][]string, error)
}

// Resolver looks up project configuration in the reference sheet.
type Resolver struct {
	table           RowReader
	defaultFolderID string
	log             zerolog.Logger
}

// NewResolver creates a Resolver over the reference table. defaultFolderID
// is the fallback storage folder used when a project row carries no usable
// folder link.
func NewResolver(table RowReader, defaultFolderID string) *Resolver {
	return &Resolver{
		table:           table,
		defaultFolderID: defaultFolderID,
		log:             logger.WithComponent("projects"),
	}
}

// ResolveProjectConfig finds the project row matching name (case-insensitive,
// trimmed) and resolves its nested lookups. One pass over the table serves
// both the row search and the auxiliary template/bank map construction.
func (r *Resolver) ResolveProjectConfig(ctx context.Context, name string) (*models.ProjectConfig, error) {
	const op = "ResolveProjectConfig"

	rows, err := r.table.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read reference table: %w", op, err)
	}

	want := canonical(name)
	templates := make(map[string]string)
	banks := make(map[string]string)
	var project []string

	for _, row := range rows {
		if tn := canonical(cell(row, colTemplateName)); tn != "" {
			templates[tn] = strings.TrimSpace(cell(row, colTemplateID))
		}
		if bs := canonical(cell(row, colBankShort)); bs != "" {
			banks[bs] = strings.TrimSpace(cell(row, colBankFull))
		}
		if project == nil && canonical(cell(row, colProject)) == want {
			project = row
		}
	}

	if project == nil {
		return nil, fmt.Errorf("%s: %q: %w", op, name, ErrProjectNotFound)
	}

	templateName := strings.TrimSpace(cell(project, colTemplate))
	if templateName == "" {
		return nil, fmt.Errorf("%s: %q: %w", op, name, ErrNoTemplateName)
	}
	templateID := templates[canonical(templateName)]
	if templateID == "" {
		return nil, fmt.Errorf("%s: template %q: %w", op, templateName, ErrNoTemplateFound)
	}

	code := NormalizeCurrencyCode(cell(project, colCurrencyCode))
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code
	}

	cfg := &models.ProjectConfig{
		Name:          strings.TrimSpace(cell(project, colProject)),
		ClientName:    cell(project, colClientName),
		ClientAddress: cell(project, colClientAddress),
		ClientVATID:   cell(project, colClientVATID),
		TaxRate:       NormalizeTaxRate(cell(project, colTaxRate)),
		CurrencyCode:  code,
		Currency:      symbol,
		PaymentTerms:  cell(project, colPaymentTerms),
		TemplateName:  templateName,
		TemplateID:    templateID,
		// Unresolvable bank codes yield empty string, not an error.
		BankAccount:       banks[canonical(cell(project, colBankCode))],
		BankCorrespondent: banks[canonical(cell(project, colCorrespondentCode))],
		OurCompany:        cell(project, colOurCompany),
		FolderLink:        cell(project, colFolder),
	}

	r.log.Debug().
		Str("project", cfg.Name).
		Str("template_id", cfg.TemplateID).
		Msg("Resolved project config")

	return cfg, nil
}

// ResolveStorageFolder finds the project's storage folder id from its folder
// cell. An absent row, blank cell or unmatched link falls back to the global
// default folder; the fallback is logged, not an error.
func (r *Resolver) ResolveStorageFolder(ctx context.Context, name string) (string, error) {
	const op = "ResolveStorageFolder"

	rows, err := r.table.Rows(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read reference table: %w", op, err)
	}

	want := canonical(name)
	for _, row := range rows {
		if canonical(cell(row, colProject)) != want {
			continue
		}
		if id := drive.FileIDFromLink(cell(row, colFolder)); id != "" {
			return id, nil
		}
		break
	}

	r.log.Info().
		Str("project", name).
		Str("folder_id", r.defaultFolderID).
		Msg("No usable folder link, falling back to default folder")

	return r.defaultFolderID, nil
}

// NormalizeTaxRate turns a raw tax cell into an integer-like percentage
// string. A numeric fraction below 1 (the sheet stored 0.15) is scaled by
// 100; anything numeric above is taken as a percentage already. Non-numeric
// input resolves to "0" rather than failing.
func NormalizeTaxRate(raw string) string {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "0"
	}
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		d = d.Mul(decimal.NewFromInt(100))
	}
	return d.String()
}

// NormalizeCurrencyCode resolves a raw currency cell (ISO code, symbol or
// common name variant) to an upper-case ISO code.
func NormalizeCurrencyCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := currencyAliases[code]; ok {
		return alias
	}
	return code
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// cell returns row[i] or "" when the row is ragged. Sheets drop trailing
// empty cells, so short rows are normal.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
