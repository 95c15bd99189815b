package cmd

import (
	"github.com/spf13/cobra"

	"billgen/internal/logger"
)

var creditNoteCmd = &cobra.Command{
	Use:   "creditnote",
	Short: "Create, list, inspect, update and delete credit notes",
	Long: `Manage credit notes stored in the credit note sheet. The lifecycle is
the same as for invoices: project configuration is resolved by name,
amounts are recomputed, the row is persisted and the document and PDF
are generated from the project's template.`,
	Example: `  # Create a credit note from a JSON submission file
  billgen creditnote create -f creditnote.json

  # List all credit notes
  billgen creditnote list`,
}

var creditNoteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a credit note and render its documents",
	Args:  cobra.NoArgs,
	RunE:  runCreditNoteCreate,
}

var creditNoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all credit notes as JSON",
	Args:  cobra.NoArgs,
	RunE:  runCreditNoteList,
}

var creditNoteGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one credit note by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreditNoteGet,
}

var creditNoteUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace a credit note and regenerate its documents",
	Args:  cobra.NoArgs,
	RunE:  runCreditNoteUpdate,
}

var creditNoteDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a credit note and clean up its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreditNoteDelete,
}

func init() {
	rootCmd.AddCommand(creditNoteCmd)
	creditNoteCmd.AddCommand(creditNoteCreateCmd, creditNoteListCmd, creditNoteGetCmd, creditNoteUpdateCmd, creditNoteDeleteCmd)

	for _, c := range []*cobra.Command{creditNoteCreateCmd, creditNoteUpdateCmd} {
		c.Flags().StringP("file", "f", "", "JSON submission file (required)")
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 120, "Processing timeout in seconds")
		_ = c.MarkFlagRequired("file")
	}
	creditNoteUpdateCmd.Flags().String("id", "", "Record id to update (overrides the file's id)")

	for _, c := range []*cobra.Command{creditNoteListCmd, creditNoteGetCmd, creditNoteDeleteCmd} {
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 60, "Processing timeout in seconds")
	}
}

func runCreditNoteCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote")

	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var input creditNoteInput
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
		Msg("Creating credit note")

	res := a.records.CreateCreditNote(ctx, input.toModel())
	return reportResult(res, outputPath, log)
}

func runCreditNoteList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	creditNotes := a.records.ListCreditNotes(ctx)
	out := make([]creditNoteOutput, 0, len(creditNotes))
	for _, cn := range creditNotes {
		out = append(out, toCreditNoteOutput(cn))
	}

	log.Info().Int("count", len(out)).Msg("Listed credit notes")
	return writeJSON(out, outputPath, log)
}

func runCreditNoteGet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	cn := a.records.GetCreditNote(ctx, id)
	if cn == nil {
		return notFoundError("credit note", id)
	}
	return writeJSON(toCreditNoteOutput(cn), outputPath, log)
}

func runCreditNoteUpdate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote")

	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id, _ := cmd.Flags().GetString("id")

	var input creditNoteInput
	if err := readInputFile(inputPath, &input); err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	cn := input.toModel()
	if id != "" {
		cn.ID = id
	}

	log.Info().
		Str("id", cn.ID).
		Str("number", input.Number).
		Msg("Updating credit note")

	res := a.records.UpdateCreditNote(ctx, cn)
	return reportResult(res, outputPath, log)
}

func runCreditNoteDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("creditnote")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("Deleting credit note")

	res := a.records.DeleteCreditNote(ctx, id)
	return reportResult(res, outputPath, log)
}
