package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billgen/internal/logger"
	"billgen/pkg/models"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect project configuration and manage storage folders",
	Long: `Work with the reference sheet: show the fully resolved configuration
for a project (client, tax rate, currency, template, bank details) or
ensure its Drive storage folder exists.`,
	Example: `  # Show the resolved configuration for a project
  billgen project config "Acme Platform"

  # Ensure the project's Drive folder exists under PARENT_FOLDER_ID
  billgen project folder "Acme Platform"`,
}

var projectConfigCmd = &cobra.Command{
	Use:   "config [project-name]",
	Short: "Show the resolved configuration for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectConfig,
}

var projectFolderCmd = &cobra.Command{
	Use:   "folder [project-name]",
	Short: "Ensure the project's Drive storage folder exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectFolder,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectConfigCmd, projectFolderCmd)

	for _, c := range []*cobra.Command{projectConfigCmd, projectFolderCmd} {
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 60, "Processing timeout in seconds")
	}
}

// projectConfigOutput is the JSON shape of a resolved project configuration.
type projectConfigOutput struct {
	Name          string `json:"name"`
	ClientName    string `json:"client_name,omitempty"`
	ClientAddress string `json:"client_address,omitempty"`
	ClientVATID   string `json:"client_vat_id,omitempty"`
	TaxRate       string `json:"tax_rate"`
	CurrencyCode  string `json:"currency_code,omitempty"`
	Currency      string `json:"currency,omitempty"`
	PaymentTerms  string `json:"payment_terms,omitempty"`
	TemplateName  string `json:"template_name"`
	TemplateID    string `json:"template_id"`
	BankAccount   string `json:"bank_account,omitempty"`
	OurCompany    string `json:"our_company,omitempty"`
	FolderLink    string `json:"folder_link,omitempty"`
}

func toProjectConfigOutput(cfg *models.ProjectConfig) projectConfigOutput {
	return projectConfigOutput{
		Name:          cfg.Name,
		ClientName:    cfg.ClientName,
		ClientAddress: cfg.ClientAddress,
		ClientVATID:   cfg.ClientVATID,
		TaxRate:       cfg.TaxRate,
		CurrencyCode:  cfg.CurrencyCode,
		Currency:      cfg.Currency,
		PaymentTerms:  cfg.PaymentTerms,
		TemplateName:  cfg.TemplateName,
		TemplateID:    cfg.TemplateID,
		BankAccount:   cfg.BankAccount,
		OurCompany:    cfg.OurCompany,
		FolderLink:    cfg.FolderLink,
	}
}

func runProjectConfig(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("project")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	name := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	cfg, err := a.resolver.ResolveProjectConfig(ctx, name)
	if err != nil {
		log.Error().Err(err).Str("project", name).Msg("Config resolution failed")
		return err
	}
	return writeJSON(toProjectConfigOutput(cfg), outputPath, log)
}

func runProjectFolder(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("project")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	name := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	// The project must exist in the reference sheet before a folder is
	// created for it.
	cfg, err := a.resolver.ResolveProjectConfig(ctx, name)
	if err != nil {
		log.Error().Err(err).Str("project", name).Msg("Config resolution failed")
		return err
	}

	if a.cfg.ParentFolderID == "" {
		return fmt.Errorf("PARENT_FOLDER_ID is not configured")
	}

	folderID, err := a.drive.FindOrCreateFolder(ctx, a.cfg.ParentFolderID, cfg.Name)
	if err != nil {
		log.Error().Err(err).Str("project", cfg.Name).Msg("Folder creation failed")
		return err
	}

	log.Info().
		Str("project", cfg.Name).
		Str("folder", folderID).
		Msg("Storage folder ready")

	return writeJSON(map[string]string{
		"project":   cfg.Name,
		"folder_id": folderID,
	}, outputPath, log)
}
