package records

import (
	"context"

	"github.com/google/uuid"

	"billgen/internal/rowcodec"
	"billgen/pkg/models"
)

// CreateInvoice runs the full pipeline for a new invoice. A failure after
// the row write leaves a partially-written row with blank artifact links;
// that state is accepted and recoverable by update or delete.
func (s *Service) CreateInvoice(ctx context.Context, inv *models.Invoice) Result {
	if err := validateInvoice(inv); err != nil {
		return failure(err)
	}

	cfg, err := s.resolver.ResolveProjectConfig(ctx, inv.Project)
	if err != nil {
		s.log.Error().Err(err).Str("project", inv.Project).Msg("Config resolution failed")
		return failure(err)
	}
	s.applyInvoiceConfig(inv, cfg)

	inv.ID = uuid.NewString()
	inv.DocumentLink = ""
	inv.PDFLink = ""

	header, err := s.invoices.Header(ctx)
	if err != nil {
		return failure(err)
	}
	row, err := rowcodec.EncodeInvoice(inv, header)
	if err != nil {
		s.log.Error().Err(err).Msg("Invoice encode failed")
		return failure(err)
	}
	if err := s.invoices.Append(ctx, row); err != nil {
		s.log.Error().Err(err).Msg("Invoice row write failed")
		return failure(err)
	}
	s.cache.Remove(cacheInvoices)

	return s.renderAndBackfillInvoice(ctx, inv, cfg, header, nil)
}

// UpdateInvoice rebuilds the row behind inv.ID from scratch. Old artifacts
// are best-effort invalidated first; their deletion failures become
// warnings, never errors.
func (s *Service) UpdateInvoice(ctx context.Context, inv *models.Invoice) Result {
	if err := requireField("id", inv.ID); err != nil {
		return failure(err)
	}
	if err := validateInvoice(inv); err != nil {
		return failure(err)
	}

	header, err := s.invoices.Header(ctx)
	if err != nil {
		return failure(err)
	}
	rows, idx, found, err := findRow(ctx, s.invoices, header, inv.ID)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "invoice not found: " + inv.ID}
	}

	old := rowcodec.DecodeInvoice(rows[idx], header)
	warnings := s.cleanupArtifacts(ctx, old.DocumentLink, old.PDFLink)

	cfg, err := s.resolver.ResolveProjectConfig(ctx, inv.Project)
	if err != nil {
		return failure(err)
	}
	s.applyInvoiceConfig(inv, cfg)
	inv.DocumentLink = ""
	inv.PDFLink = ""

	row, err := rowcodec.EncodeInvoice(inv, header)
	if err != nil {
		return failure(err)
	}
	if err := s.invoices.Update(ctx, idx, row); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheInvoices)

	return s.renderAndBackfillInvoice(ctx, inv, cfg, header, warnings)
}

// DeleteInvoice removes the row behind id. The row is removed even when
// artifact cleanup partially fails; cleanup failures surface as a note.
func (s *Service) DeleteInvoice(ctx context.Context, id string) Result {
	if err := requireField("id", id); err != nil {
		return failure(err)
	}

	header, err := s.invoices.Header(ctx)
	if err != nil {
		return failure(err)
	}
	rows, idx, found, err := findRow(ctx, s.invoices, header, id)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "invoice not found: " + id}
	}

	old := rowcodec.DecodeInvoice(rows[idx], header)
	warnings := s.cleanupArtifacts(ctx, old.DocumentLink, old.PDFLink)

	if err := s.invoices.Delete(ctx, idx); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheInvoices)

	return Result{
		Success:  true,
		Message:  successMessage("invoice deleted", warnings),
		ID:       id,
		Warnings: warnings,
	}
}

// ListInvoices returns every invoice through the read cache. Errors are
// logged and swallowed; the caller gets an empty slice.
func (s *Service) ListInvoices(ctx context.Context) []*models.Invoice {
	if cached, ok := s.cache.Get(cacheInvoices); ok {
		return cached.([]*models.Invoice)
	}

	header, err := s.invoices.Header(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Invoice list read failed")
		return []*models.Invoice{}
	}
	rows, err := s.invoices.Rows(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Invoice list read failed")
		return []*models.Invoice{}
	}

	invoices := make([]*models.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, rowcodec.DecodeInvoice(row, header))
	}
	s.cache.Put(cacheInvoices, invoices)
	return invoices
}

// GetInvoice returns the invoice behind id, or nil when absent. A nil
// result is the not-found sentinel, distinct from a record with empty
// fields.
func (s *Service) GetInvoice(ctx context.Context, id string) *models.Invoice {
	header, err := s.invoices.Header(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Invoice read failed")
		return nil
	}
	rows, idx, found, err := findRow(ctx, s.invoices, header, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Invoice read failed")
		return nil
	}
	if !found {
		return nil
	}
	return rowcodec.DecodeInvoice(rows[idx], header)
}

// applyInvoiceConfig fills config-derived fields and recomputes the
// monetary ones. The subtotal falls back to the item amount sum when the
// submission left it blank.
func (s *Service) applyInvoiceConfig(inv *models.Invoice, cfg *models.ProjectConfig) {
	inv.ClientName = cfg.ClientName
	inv.ClientAddress = cfg.ClientAddress
	inv.ClientVATID = cfg.ClientVATID
	inv.Currency = cfg.Currency
	inv.TaxRate = cfg.TaxRate
	inv.PaymentTerms = cfg.PaymentTerms
	inv.BankAccount = cfg.BankAccount
	inv.BankCorrespondent = cfg.BankCorrespondent
	inv.OurCompany = cfg.OurCompany
	inv.Template = cfg.TemplateName

	if inv.Subtotal == "" {
		inv.Subtotal = subtotalFromItems(inv.Items)
	} else {
		inv.Subtotal = models.FormatAmount(inv.Subtotal)
	}
	inv.TaxAmount, inv.Total = models.ComputeTotals(inv.Subtotal, inv.TaxRate)
}

// renderAndBackfillInvoice renders the document, back-fills the artifact
// links into the persisted row (located by id, not position) and
// invalidates the list cache.
func (s *Service) renderAndBackfillInvoice(ctx context.Context, inv *models.Invoice, cfg *models.ProjectConfig, header []string, warnings []string) Result {
	folderID, err := s.resolver.ResolveStorageFolder(ctx, inv.Project)
	if err != nil {
		return failure(err)
	}

	rendered, err := s.renderer.RenderInvoice(ctx, cfg.TemplateID, folderID, inv, cfg.CurrencyCode)
	if err != nil {
		s.log.Error().Err(err).Str("invoice", inv.ID).Msg("Invoice render failed")
		return failure(err)
	}

	inv.DocumentLink = rendered.DocumentLink
	inv.PDFLink = rendered.PDFLink

	// Rows may have moved since the write; address by id.
	_, idx, found, err := findRow(ctx, s.invoices, header, inv.ID)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "invoice row vanished before back-fill: " + inv.ID}
	}
	row, err := rowcodec.EncodeInvoice(inv, header)
	if err != nil {
		return failure(err)
	}
	if err := s.invoices.Update(ctx, idx, row); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheInvoices)

	return Result{
		Success:      true,
		Message:      successMessage("invoice "+inv.Number+" generated", warnings),
		ID:           inv.ID,
		DocumentLink: rendered.DocumentLink,
		PDFLink:      rendered.PDFLink,
		Warnings:     warnings,
	}
}
