package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"billgen/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "billgen",
	Short: "Billgen CLI - generate invoices, credit notes and contracts from spreadsheet data",
	Long: `Billgen keeps billing records in a shared spreadsheet and turns them into
finished documents: it copies a per-project template, fills in the record
fields and line items, exports a PDF and writes the artifact links back
into the record's row.

Project-level data (client, tax rate, currency, template, bank details)
lives in a reference sheet and is resolved by project name, so a record
submission only carries what is specific to that record.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Billgen CLI executed")

		fmt.Println("Welcome to Billgen!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
