// Package records orchestrates record lifecycles: validate, resolve project
// config, encode and persist the sheet row, render and export the document,
// back-fill the artifact links and invalidate the list cache. Mutations
// return a Result; reads never raise past this boundary.
package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"billgen/internal/cache"
	"billgen/internal/drive"
	"billgen/internal/logger"
	"billgen/internal/render"
	"billgen/internal/rowcodec"
	"billgen/internal/schema"
	"billgen/pkg/models"
)

// Table is the slice of the sheet API the service needs.
type Table interface {
	Header(ctx context.Context) ([]string, error)
	Rows(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, row []string) error
	Update(ctx context.Context, rowIndex int, row []string) error
	Delete(ctx context.Context, rowIndex int) error
}

// ConfigResolver supplies per-project configuration.
type ConfigResolver interface {
	ResolveProjectConfig(ctx context.Context, name string) (*models.ProjectConfig, error)
	ResolveStorageFolder(ctx context.Context, name string) (string, error)
}

// Renderer renders and exports documents.
type Renderer interface {
	RenderInvoice(ctx context.Context, templateID, folderID string, inv *models.Invoice, currencyCode string) (*render.Rendered, error)
	RenderCreditNote(ctx context.Context, templateID, folderID string, cn *models.CreditNote, currencyCode string) (*render.Rendered, error)
	RenderContract(ctx context.Context, templateID, folderID string, c *models.Contract) (*render.Rendered, error)
}

// ArtifactStore deletes generated files during cleanup.
type ArtifactStore interface {
	Delete(ctx context.Context, fileID string) error
}

// Result is the outcome of a mutation. Warnings carry best-effort cleanup
// failures that did not block the operation; they surface in Message too.
type Result struct {
	Success      bool
	Message      string
	ID           string
	DocumentLink string
	PDFLink      string
	Warnings     []string
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// Cache keys per list view.
const (
	cacheInvoices    = "invoices:list"
	cacheCreditNotes = "creditnotes:list"
	cacheContracts   = "contracts:list"
)

// Service implements create/list/get/update/delete for every record type.
type Service struct {
	invoices    Table
	creditNotes Table
	contracts   Table

	resolver ConfigResolver
	renderer Renderer
	files    ArtifactStore
	cache    *cache.Cache

	log zerolog.Logger
}

// NewService wires the record service. All collaborators are required.
func NewService(invoices, creditNotes, contracts Table, resolver ConfigResolver, renderer Renderer, files ArtifactStore, c *cache.Cache) *Service {
	return &Service{
		invoices:    invoices,
		creditNotes: creditNotes,
		contracts:   contracts,
		resolver:    resolver,
		renderer:    renderer,
		files:       files,
		cache:       c,
		log:         logger.WithComponent("records"),
	}
}

// ValidateSchemas checks every live sheet header against the declared
// layouts. Called once at startup so positional decodes can be trusted
// afterwards.
func (s *Service) ValidateSchemas(ctx context.Context) error {
	const op = "ValidateSchemas"

	header, err := s.invoices.Header(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := schema.ValidateHeader(schema.RecordInvoice, schema.InvoiceItems, header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	header, err = s.creditNotes.Header(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := schema.ValidateHeader(schema.RecordCreditNote, schema.CreditNoteItems, header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	header, err = s.contracts.Header(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := schema.ValidateContractHeader(header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := schema.ValidateHeader(schema.RecordContract, schema.ContractItems, header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// cleanupArtifacts best-effort-deletes the files behind the two artifact
// links. Each deletion is individually wrapped so one failure blocks
// neither the other nor the caller; failures come back as warnings.
func (s *Service) cleanupArtifacts(ctx context.Context, documentLink, pdfLink string) []string {
	var warnings []string
	for _, link := range []string{documentLink, pdfLink} {
		if strings.TrimSpace(link) == "" {
			continue
		}
		fileID := drive.FileIDFromLink(link)
		if fileID == "" {
			warnings = append(warnings, fmt.Sprintf("could not extract file id from link %q", link))
			continue
		}
		if err := s.files.Delete(ctx, fileID); err != nil {
			s.log.Warn().Err(err).Str("file", fileID).Msg("Artifact cleanup failed")
			warnings = append(warnings, fmt.Sprintf("could not delete file %s: %v", fileID, err))
		}
	}
	return warnings
}

// findRow looks a record up by id in its table. The bool distinguishes a
// missing record from one with empty fields.
func findRow(ctx context.Context, t Table, header []string, id string) ([][]string, int, bool, error) {
	rows, err := t.Rows(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	idCol := 0
	for i, name := range header {
		if strings.TrimSpace(name) == "ID" {
			idCol = i
			break
		}
	}
	idx, found := rowcodec.FindByID(rows, idCol, id)
	return rows, idx, found, nil
}

// successMessage folds cleanup warnings into a human-readable note.
func successMessage(base string, warnings []string) string {
	if len(warnings) == 0 {
		return base
	}
	return fmt.Sprintf("%s (cleanup incomplete: %s)", base, strings.Join(warnings, "; "))
}
