package records

import (
	"context"

	"github.com/google/uuid"

	"billgen/internal/rowcodec"
	"billgen/pkg/models"
)

// CreateCreditNote runs the full pipeline for a new credit note.
func (s *Service) CreateCreditNote(ctx context.Context, cn *models.CreditNote) Result {
	if err := validateCreditNote(cn); err != nil {
		return failure(err)
	}

	cfg, err := s.resolver.ResolveProjectConfig(ctx, cn.Project)
	if err != nil {
		s.log.Error().Err(err).Str("project", cn.Project).Msg("Config resolution failed")
		return failure(err)
	}
	s.applyCreditNoteConfig(cn, cfg)

	cn.ID = uuid.NewString()
	cn.DocumentLink = ""
	cn.PDFLink = ""

	header, err := s.creditNotes.Header(ctx)
	if err != nil {
		return failure(err)
	}
	row, err := rowcodec.EncodeCreditNote(cn, header)
	if err != nil {
		s.log.Error().Err(err).Msg("Credit note encode failed")
		return failure(err)
	}
	if err := s.creditNotes.Append(ctx, row); err != nil {
		s.log.Error().Err(err).Msg("Credit note row write failed")
		return failure(err)
	}
	s.cache.Remove(cacheCreditNotes)

	return s.renderAndBackfillCreditNote(ctx, cn, cfg, header, nil)
}

// UpdateCreditNote rebuilds the row behind cn.ID from scratch after
// best-effort invalidation of the old artifacts.
func (s *Service) UpdateCreditNote(ctx context.Context, cn *models.CreditNote) Result {
	if err := requireField("id", cn.ID); err != nil {
		return failure(err)
	}
	if err := validateCreditNote(cn); err != nil {
		return failure(err)
	}

	header, err := s.creditNotes.Header(ctx)
	if err != nil {
		return failure(err)
	}
	rows, idx, found, err := findRow(ctx, s.creditNotes, header, cn.ID)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "credit note not found: " + cn.ID}
	}

	old := rowcodec.DecodeCreditNote(rows[idx], header)
	warnings := s.cleanupArtifacts(ctx, old.DocumentLink, old.PDFLink)

	cfg, err := s.resolver.ResolveProjectConfig(ctx, cn.Project)
	if err != nil {
		return failure(err)
	}
	s.applyCreditNoteConfig(cn, cfg)
	cn.DocumentLink = ""
	cn.PDFLink = ""

	row, err := rowcodec.EncodeCreditNote(cn, header)
	if err != nil {
		return failure(err)
	}
	if err := s.creditNotes.Update(ctx, idx, row); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheCreditNotes)

	return s.renderAndBackfillCreditNote(ctx, cn, cfg, header, warnings)
}

// DeleteCreditNote removes the row behind id regardless of artifact
// cleanup outcome.
func (s *Service) DeleteCreditNote(ctx context.Context, id string) Result {
	if err := requireField("id", id); err != nil {
		return failure(err)
	}

	header, err := s.creditNotes.Header(ctx)
	if err != nil {
		return failure(err)
	}
	rows, idx, found, err := findRow(ctx, s.creditNotes, header, id)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "credit note not found: " + id}
	}

	old := rowcodec.DecodeCreditNote(rows[idx], header)
	warnings := s.cleanupArtifacts(ctx, old.DocumentLink, old.PDFLink)

	if err := s.creditNotes.Delete(ctx, idx); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheCreditNotes)

	return Result{
		Success:  true,
		Message:  successMessage("credit note deleted", warnings),
		ID:       id,
		Warnings: warnings,
	}
}

// ListCreditNotes returns every credit note through the read cache.
func (s *Service) ListCreditNotes(ctx context.Context) []*models.CreditNote {
	if cached, ok := s.cache.Get(cacheCreditNotes); ok {
		return cached.([]*models.CreditNote)
	}

	header, err := s.creditNotes.Header(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Credit note list read failed")
		return []*models.CreditNote{}
	}
	rows, err := s.creditNotes.Rows(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Credit note list read failed")
		return []*models.CreditNote{}
	}

	notes := make([]*models.CreditNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, rowcodec.DecodeCreditNote(row, header))
	}
	s.cache.Put(cacheCreditNotes, notes)
	return notes
}

// GetCreditNote returns the credit note behind id, or nil when absent.
func (s *Service) GetCreditNote(ctx context.Context, id string) *models.CreditNote {
	header, err := s.creditNotes.Header(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Credit note read failed")
		return nil
	}
	rows, idx, found, err := findRow(ctx, s.creditNotes, header, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Credit note read failed")
		return nil
	}
	if !found {
		return nil
	}
	return rowcodec.DecodeCreditNote(rows[idx], header)
}

func (s *Service) applyCreditNoteConfig(cn *models.CreditNote, cfg *models.ProjectConfig) {
	cn.ClientName = cfg.ClientName
	cn.ClientAddress = cfg.ClientAddress
	cn.ClientVATID = cfg.ClientVATID
	cn.Currency = cfg.Currency
	cn.TaxRate = cfg.TaxRate
	cn.OurCompany = cfg.OurCompany
	cn.Template = cfg.TemplateName

	if cn.Subtotal == "" {
		cn.Subtotal = subtotalFromItems(cn.Items)
	} else {
		cn.Subtotal = models.FormatAmount(cn.Subtotal)
	}
	cn.TaxAmount, cn.Total = models.ComputeTotals(cn.Subtotal, cn.TaxRate)
}

func (s *Service) renderAndBackfillCreditNote(ctx context.Context, cn *models.CreditNote, cfg *models.ProjectConfig, header []string, warnings []string) Result {
	folderID, err := s.resolver.ResolveStorageFolder(ctx, cn.Project)
	if err != nil {
		return failure(err)
	}

	rendered, err := s.renderer.RenderCreditNote(ctx, cfg.TemplateID, folderID, cn, cfg.CurrencyCode)
	if err != nil {
		s.log.Error().Err(err).Str("credit_note", cn.ID).Msg("Credit note render failed")
		return failure(err)
	}

	cn.DocumentLink = rendered.DocumentLink
	cn.PDFLink = rendered.PDFLink

	_, idx, found, err := findRow(ctx, s.creditNotes, header, cn.ID)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "credit note row vanished before back-fill: " + cn.ID}
	}
	row, err := rowcodec.EncodeCreditNote(cn, header)
	if err != nil {
		return failure(err)
	}
	if err := s.creditNotes.Update(ctx, idx, row); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheCreditNotes)

	return Result{
		Success:      true,
		Message:      successMessage("credit note "+cn.Number+" generated", warnings),
		ID:           cn.ID,
		DocumentLink: rendered.DocumentLink,
		PDFLink:      rendered.PDFLink,
		Warnings:     warnings,
	}
}
