package cmd

import (
	"github.com/spf13/cobra"

	"billgen/internal/logger"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Create, list, inspect, update and delete contracts",
	Long: `Manage contracts stored in the contract sheet. Contract documents are
filled purely through placeholder substitution, including indexed
placeholders for up to ten service items; they have no in-document
item table.`,
	Example: `  # Create a contract from a JSON submission file
  billgen contract create -f contract.json

  # List all contracts
  billgen contract list`,
}

var contractCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contract and render its documents",
	Args:  cobra.NoArgs,
	RunE:  runContractCreate,
}

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contracts as JSON",
	Args:  cobra.NoArgs,
	RunE:  runContractList,
}

var contractGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one contract by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runContractGet,
}

var contractUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace a contract and regenerate its documents",
	Args:  cobra.NoArgs,
	RunE:  runContractUpdate,
}

var contractDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a contract and clean up its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runContractDelete,
}

func init() {
	rootCmd.AddCommand(contractCmd)
	contractCmd.AddCommand(contractCreateCmd, contractListCmd, contractGetCmd, contractUpdateCmd, contractDeleteCmd)

	for _, c := range []*cobra.Command{contractCreateCmd, contractUpdateCmd} {
		c.Flags().StringP("file", "f", "", "JSON submission file (required)")
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 120, "Processing timeout in seconds")
		_ = c.MarkFlagRequired("file")
	}
	contractUpdateCmd.Flags().String("id", "", "Record id to update (overrides the file's id)")

	for _, c := range []*cobra.Command{contractListCmd, contractGetCmd, contractDeleteCmd} {
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 60, "Processing timeout in seconds")
	}
}

func runContractCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("contract")

	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	var input contractInput
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
		Msg("Creating contract")

	res := a.records.CreateContract(ctx, input.toModel())
	return reportResult(res, outputPath, log)
}

func runContractList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("contract")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	contracts := a.records.ListContracts(ctx)
	out := make([]contractOutput, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractOutput(c))
	}

	log.Info().Int("count", len(out)).Msg("Listed contracts")
	return writeJSON(out, outputPath, log)
}

func runContractGet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("contract")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	c := a.records.GetContract(ctx, id)
	if c == nil {
		return notFoundError("contract", id)
	}
	return writeJSON(toContractOutput(c), outputPath, log)
}

func runContractUpdate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("contract")

	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id, _ := cmd.Flags().GetString("id")

	var input contractInput
	if err := readInputFile(inputPath, &input); err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	c := input.toModel()
	if id != "" {
		c.ID = id
	}

	log.Info().
		Str("id", c.ID).
		Str("number", input.Number).
		Msg("Updating contract")

	res := a.records.UpdateContract(ctx, c)
	return reportResult(res, outputPath, log)
}

func runContractDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("contract")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	id := args[0]

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("Deleting contract")

	res := a.records.DeleteContract(ctx, id)
	return reportResult(res, outputPath, log)
}
