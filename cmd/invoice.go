package cmd

import (
	"github.com/spf13/cobra"

	"billgen/internal/logger"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create, list, inspect, update and delete invoices",
	Long: `Manage invoices stored in the invoice sheet. Creating or updating an
invoice resolves the project configuration, recomputes the tax amounts,
persists the row, renders the invoice document from the project's
template and exports a PDF.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  SPREADSHEET_URL - URL of the billing spreadsheet
  DEFAULT_FOLDER_ID - Fallback Drive folder for generated documents
  OUTPUT_FOLDER_ID - Drive folder receiving exported PDFs`,
	Example: `  # Create an invoice from a JSON submission file
  billgen invoice create -f invoice.json

  # List all invoices
  billgen invoice list

  # Regenerate an invoice after editing the submission
  billgen invoice update -f invoice.json --id 7c9e6679-7425-40de-944b-e07fc1f90ae7

  # Delete an invoice and its generated documents
  billgen invoice delete 7c9e6679-7425-40de-944b-e07fc1f90ae7`,
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice and render its documents",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all invoices as JSON",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one invoice by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceGet,
}

var invoiceUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace an invoice and regenerate its documents",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceUpdate,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an invoice and clean up its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceGetCmd, invoiceUpdateCmd, invoiceDeleteCmd)

	for _, c := range []*cobra.Command{invoiceCreateCmd, invoiceUpdateCmd} {
		c.Flags().StringP("file", "f", "", "JSON submission file (required)")
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 120, "Processing timeout in seconds")
		_ = c.MarkFlagRequired("file")
	}
	invoiceUpdateCmd.Flags().String("id", "", "Record id to update (overrides the file's id)")

	for _, c := range []*cobra.Command{invoiceListCmd, invoiceGetCmd, invoiceDeleteCmd} {
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 60, "Processing timeout in seconds")
	}
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var input invoiceInput
	if err := readInputFile(inputPath, &input); err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("project", input.Project).
		Str("number", input.Number).
		Int("items", len(input.Items)).
		Msg("Creating invoice")

	res := a.records.CreateInvoice(ctx, input.toModel())
	return reportResult(res, outputPath, log)
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	invoices := a.records.ListInvoices(ctx)
	out := make([]invoiceOutput, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceOutput(inv))
	}

	log.Info().Int("count", len(out)).Msg("Listed invoices")
	return writeJSON(out, outputPath, log)
}

func runInvoiceGet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	inv := a.records.GetInvoice(ctx, id)
	if inv == nil {
		return notFoundError("invoice", id)
	}
	return writeJSON(toInvoiceOutput(inv), outputPath, log)
}

func runInvoiceUpdate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id, _ := cmd.Flags().GetString("id")

	var input invoiceInput
	if err := readInputFile(inputPath, &input); err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	inv := input.toModel()
	if id != "" {
		inv.ID = id
	}

	log.Info().
		Str("id", inv.ID).
		Str("number", input.Number).
		Msg("Updating invoice")

	res := a.records.UpdateInvoice(ctx, inv)
	return reportResult(res, outputPath, log)
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("Deleting invoice")

	res := a.records.DeleteInvoice(ctx, id)
	return reportResult(res, outputPath, log)
}
