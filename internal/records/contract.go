package records

import (
	"context"

	"github.com/google/uuid"

	"billgen/internal/rowcodec"
	"billgen/pkg/models"
)

// CreateContract runs the full pipeline for a new contract. Contracts have
// no item table in the document; their items feed index-keyed placeholder
// tokens instead.
func (s *Service) CreateContract(ctx context.Context, c *models.Contract) Result {
	if err := validateContract(c); err != nil {
		return failure(err)
	}

	cfg, err := s.resolver.ResolveProjectConfig(ctx, c.Project)
	if err != nil {
		s.log.Error().Err(err).Str("project", c.Project).Msg("Config resolution failed")
		return failure(err)
	}
	s.applyContractConfig(c, cfg)

	c.ID = uuid.NewString()
	c.DocumentLink = ""
	c.PDFLink = ""

	header, err := s.contracts.Header(ctx)
	if err != nil {
		return failure(err)
	}
	row, err := rowcodec.EncodeContract(c, header)
	if err != nil {
		s.log.Error().Err(err).Msg("Contract encode failed")
		return failure(err)
	}
	if err := s.contracts.Append(ctx, row); err != nil {
		s.log.Error().Err(err).Msg("Contract row write failed")
		return failure(err)
	}
	s.cache.Remove(cacheContracts)

	return s.renderAndBackfillContract(ctx, c, cfg, header, nil)
}

// UpdateContract rebuilds the row behind c.ID from scratch after
// best-effort invalidation of the old artifacts.
func (s *Service) UpdateContract(ctx context.Context, c *models.Contract) Result {
	if err := requireField("id", c.ID); err != nil {
		return failure(err)
	}
	if err := validateContract(c); err != nil {
		return failure(err)
	}

	header, err := s.contracts.Header(ctx)
	if err != nil {
		return failure(err)
	}
	rows, idx, found, err := findRow(ctx, s.contracts, header, c.ID)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "contract not found: " + c.ID}
	}

	old := rowcodec.DecodeContract(rows[idx], header)
	warnings := s.cleanupArtifacts(ctx, old.DocumentLink, old.PDFLink)

	cfg, err := s.resolver.ResolveProjectConfig(ctx, c.Project)
	if err != nil {
		return failure(err)
	}
	s.applyContractConfig(c, cfg)
	c.DocumentLink = ""
	c.PDFLink = ""

	row, err := rowcodec.EncodeContract(c, header)
	if err != nil {
		return failure(err)
	}
	if err := s.contracts.Update(ctx, idx, row); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheContracts)

	return s.renderAndBackfillContract(ctx, c, cfg, header, warnings)
}

// DeleteContract removes the row behind id regardless of artifact cleanup
// outcome.
func (s *Service) DeleteContract(ctx context.Context, id string) Result {
	if err := requireField("id", id); err != nil {
		return failure(err)
	}

	header, err := s.contracts.Header(ctx)
	if err != nil {
		return failure(err)
	}
	rows, idx, found, err := findRow(ctx, s.contracts, header, id)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "contract not found: " + id}
	}

	old := rowcodec.DecodeContract(rows[idx], header)
	warnings := s.cleanupArtifacts(ctx, old.DocumentLink, old.PDFLink)

	if err := s.contracts.Delete(ctx, idx); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheContracts)

	return Result{
		Success:  true,
		Message:  successMessage("contract deleted", warnings),
		ID:       id,
		Warnings: warnings,
	}
}

// ListContracts returns every contract through the read cache.
func (s *Service) ListContracts(ctx context.Context) []*models.Contract {
	if cached, ok := s.cache.Get(cacheContracts); ok {
		return cached.([]*models.Contract)
	}

	header, err := s.contracts.Header(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Contract list read failed")
		return []*models.Contract{}
	}
	rows, err := s.contracts.Rows(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Contract list read failed")
		return []*models.Contract{}
	}

	contracts := make([]*models.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, rowcodec.DecodeContract(row, header))
	}
	s.cache.Put(cacheContracts, contracts)
	return contracts
}

// GetContract returns the contract behind id, or nil when absent.
func (s *Service) GetContract(ctx context.Context, id string) *models.Contract {
	header, err := s.contracts.Header(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Contract read failed")
		return nil
	}
	rows, idx, found, err := findRow(ctx, s.contracts, header, id)
	if err != nil {
		s.log.Error().Err(err).Msg("Contract read failed")
		return nil
	}
	if !found {
		return nil
	}
	return rowcodec.DecodeContract(rows[idx], header)
}

func (s *Service) applyContractConfig(c *models.Contract, cfg *models.ProjectConfig) {
	c.ClientName = cfg.ClientName
	c.ClientAddress = cfg.ClientAddress
	c.Currency = cfg.Currency
	c.TaxRate = cfg.TaxRate
	c.OurCompany = cfg.OurCompany
	c.Template = cfg.TemplateName
	c.Fee = models.FormatAmount(c.Fee)
}

func (s *Service) renderAndBackfillContract(ctx context.Context, c *models.Contract, cfg *models.ProjectConfig, header []string, warnings []string) Result {
	folderID, err := s.resolver.ResolveStorageFolder(ctx, c.Project)
	if err != nil {
		return failure(err)
	}

	rendered, err := s.renderer.RenderContract(ctx, cfg.TemplateID, folderID, c)
	if err != nil {
		s.log.Error().Err(err).Str("contract", c.ID).Msg("Contract render failed")
		return failure(err)
	}

	c.DocumentLink = rendered.DocumentLink
	c.PDFLink = rendered.PDFLink

	_, idx, found, err := findRow(ctx, s.contracts, header, c.ID)
	if err != nil {
		return failure(err)
	}
	if !found {
		return Result{Success: false, Message: "contract row vanished before back-fill: " + c.ID}
	}
	row, err := rowcodec.EncodeContract(c, header)
	if err != nil {
		return failure(err)
	}
	if err := s.contracts.Update(ctx, idx, row); err != nil {
		return failure(err)
	}
	s.cache.Remove(cacheContracts)

	return Result{
		Success:      true,
		Message:      successMessage("contract "+c.Number+" generated", warnings),
		ID:           c.ID,
		DocumentLink: rendered.DocumentLink,
		PDFLink:      rendered.PDFLink,
		Warnings:     warnings,
	}
}
