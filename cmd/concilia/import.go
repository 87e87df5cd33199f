package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/cli"
	"github.com/concilia-dev/concilia/internal/common"
	"github.com/concilia-dev/concilia/internal/importer"
	"github.com/concilia-dev/concilia/internal/matching"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/ofx"
	"github.com/concilia-dev/concilia/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank statements from OFX/QFX or CSV files",
		Long: `Import bank statements exported from internet banking.

OFX/QFX files carry their own account ID; CSV files need --account.
Each imported transaction is classified against the active import
templates, and classified transactions get a draft accounting entry.

Examples:
  # Import an OFX statement
  concilia import ~/Downloads/extrato_marco.ofx

  # Import a CSV statement for a specific account
  concilia import --account 12345-6 ~/Downloads/extrato.csv

  # Preview without saving
  concilia import --dry-run ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("account", "", "account ID for CSV files (OFX files carry their own)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	cmd.Flags().Float64("min-confidence", 0.7, "minimum confidence for template classification")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accountID, _ := cmd.Flags().GetString("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")

	files, err := expandFileArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError(
			"Nenhum arquivo encontrado para importar.",
			fmt.Errorf("no files matched"))
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	engine, err := initMatchEngine(ctx, store)
	if err != nil {
		return err
	}

	start := time.Now()
	var txns []model.BankTransaction
	seen := make(map[string]bool)

	for _, path := range files {
		parsed, err := parseStatementFile(ctx, path, accountID)
		if err != nil {
			slog.Error("Failed to parse statement", "file", path, "error", err)
			continue
		}
		added := 0
		for _, txn := range parsed {
			if !seen[txn.Hash] {
				seen[txn.Hash] = true
				txns = append(txns, txn)
				added++
			}
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	if len(txns) == 0 {
		return common.ErrNoTransactions
	}

	stats, drafts := classifyTransactions(txns, engine, minConfidence)
	stats.Total = len(txns)
	stats.Duration = time.Since(start)

	if !dryRun {
		if err := store.SaveTransactions(ctx, txns); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
		for i := range drafts {
			if err := store.SaveEntry(ctx, &drafts[i]); err != nil {
				return fmt.Errorf("failed to save draft entry: %w", err)
			}
		}
		stats.Imported = len(txns)
	}

	printImportSummary(stats, len(drafts), dryRun)
	return nil
}

// classifyTransactions runs every transaction memo through the template
// engine and builds draft accounting entries for the classified ones.
func classifyTransactions(txns []model.BankTransaction, engine *matching.Engine, minConfidence float64) (service.ImportStats, []model.AccountingEntry) {
	var stats service.ImportStats
	var drafts []model.AccountingEntry

	opts := matching.DefaultOptions()
	opts.MinConfidence = minConfidence

	bar := progressbar.NewOptions(len(txns),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Classificando transações..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	for i := range txns {
		result := engine.Match(txns[i].Memo, opts)
		if result.Matched() {
			stats.Classified++
			drafts = append(drafts, draftEntry(&txns[i], result.Template))
		} else {
			stats.Manual++
		}
		_ = bar.Add(1)
	}

	return stats, drafts
}

// draftEntry builds a pending accounting entry from a classified transaction.
// Entry amounts are always positive; the kind carries the direction.
func draftEntry(txn *model.BankTransaction, tmpl *model.ImportTemplate) model.AccountingEntry {
	kind := model.KindDespesa
	if txn.IsCredit() {
		kind = model.KindReceita
	}

	description := txn.Memo
	if tmpl.Category != "" {
		description = tmpl.Category + ": " + txn.Memo
	}

	return model.AccountingEntry{
		ID:          "draft-" + txn.ID,
		Date:        txn.PostedAt,
		Description: description,
		Kind:        kind,
		Status:      model.StatusPendente,
		Amount:      math.Abs(txn.Amount),
		TemplateID:  tmpl.ID,
	}
}

// parseStatementFile picks the parser by extension.
func parseStatementFile(ctx context.Context, path, accountID string) ([]model.BankTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return ofx.NewParser().ParseFile(ctx, f)
	case ".csv":
		if accountID == "" {
			return nil, common.NewUserError(
				"Arquivos CSV exigem --account para identificar a conta.",
				common.ErrMissingConfig)
		}
		return importer.NewCSVParser(accountID).ParseFile(ctx, f)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func expandFileArgs(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			files = append(files, matches...)
		}
	}
	return files, nil
}

func printImportSummary(stats service.ImportStats, draftCount int, dryRun bool) {
	fmt.Println()
	fmt.Println(cli.FormatTitle("Resumo da importação"))
	fmt.Printf("  Transações lidas:      %d\n", stats.Total)
	fmt.Printf("  Classificadas:         %s\n", cli.SuccessStyle.Render(fmt.Sprintf("%d", stats.Classified)))
	fmt.Printf("  Para revisão manual:   %s\n", cli.WarningStyle.Render(fmt.Sprintf("%d", stats.Manual)))
	fmt.Printf("  Lançamentos rascunho:  %d\n", draftCount)
	fmt.Printf("  Tempo:                 %s\n", stats.Duration.Round(time.Millisecond))

	if dryRun {
		fmt.Println(cli.FormatInfo("Dry run: nada foi gravado."))
	} else {
		fmt.Println(cli.FormatSuccess("Importação concluída."))
	}
}
