package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"billgen/internal/cache"
	"billgen/internal/config"
	"billgen/internal/drive"
	"billgen/internal/gdocs"
	"billgen/internal/logger"
	"billgen/internal/projects"
	"billgen/internal/records"
	"billgen/internal/render"
	"billgen/internal/sheets"
)

// app bundles the wired service graph behind a command: the record service
// plus the collaborators a command may want to reach directly.
type app struct {
	cfg      *config.Config
	records  *records.Service
	resolver *projects.Resolver
	drive    *drive.Service
	log      zerolog.Logger
}

// newApp builds the full service graph from configuration and validates
// every sheet header before any command logic runs. Positional decodes are
// only safe after that check.
func newApp(ctx context.Context) (*app, error) {
	log := logger.WithComponent("app")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	sheetSvc, err := sheets.NewService(ctx, cfg.SpreadsheetURL)
	if err != nil {
		log.Error().Err(err).Msg("Sheets client initialization failed")
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	driveSvc, err := drive.NewService(ctx, cfg.ExportDelay)
	if err != nil {
		log.Error().Err(err).Msg("Drive client initialization failed")
		return nil, fmt.Errorf("drive client: %w", err)
	}

	docsClient, err := gdocs.NewClient(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Docs client initialization failed")
		return nil, fmt.Errorf("docs client: %w", err)
	}

	resolver := projects.NewResolver(sheetSvc.Table(cfg.ProjectsSheet), cfg.DefaultFolderID)
	renderer := render.NewRenderer(docsClient, driveSvc, cfg.OutputFolderID)

	svc := records.NewService(
		sheetSvc.Table(cfg.InvoicesSheet),
		sheetSvc.Table(cfg.CreditNotesSheet),
		sheetSvc.Table(cfg.ContractsSheet),
		resolver,
		renderer,
		driveSvc,
		cache.New(cfg.CacheTTL),
	)

	if err := svc.ValidateSchemas(ctx); err != nil {
		log.Error().Err(err).Msg("Sheet schema validation failed")
		return nil, fmt.Errorf("sheet schema validation: %w", err)
	}

	return &app{
		cfg:      cfg,
		records:  svc,
		resolver: resolver,
		drive:    driveSvc,
		log:      log,
	}, nil
}

// commandContext creates a context with timeout and interrupt handling for
// one command invocation.
func commandContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// readInputFile decodes a JSON submission file into v.
func readInputFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// writeJSON pretty-prints v to outputPath, or stdout when empty.
func writeJSON(v interface{}, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}

// reportResult prints a mutation outcome and turns a failed Result into an
// error so the process exits non-zero.
func reportResult(res records.Result, outputPath string, log zerolog.Logger) error {
	if err := writeJSON(resultOutput{
		Success:      res.Success,
		Message:      res.Message,
		ID:           res.ID,
		DocumentLink: res.DocumentLink,
		PDFLink:      res.PDFLink,
		Warnings:     res.Warnings,
	}, outputPath, log); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	return nil
}

func notFoundError(kind, id string) error {
	return fmt.Errorf("%s not found: %s", kind, id)
}

// resultOutput is the JSON shape of a mutation outcome.
type resultOutput struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	ID           string   `json:"id,omitempty"`
	DocumentLink string   `json:"document_link,omitempty"`
	PDFLink      string   `json:"pdf_link,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}
