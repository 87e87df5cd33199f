package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/cli"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/concilia-dev/concilia/internal/pairing"
	"github.com/concilia-dev/concilia/internal/service"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Suggest pairings between bank transactions and accounting entries",
		Long: `Run the pairing search over unreconciled bank transactions and pending
accounting entries, ranked by confidence.

With --confirm, each suggested pairing is offered for confirmation;
accepted pairs are marked confirmed/conciliado in the database.

Examples:
  concilia reconcile --account 12345-6
  concilia reconcile --account 12345-6 --from 2024-03-01 --to 2024-03-31
  concilia reconcile --account 12345-6 --confirm`,
		RunE: runReconcile,
	}

	cmd.Flags().String("account", "", "account ID to reconcile (required)")
	cmd.Flags().String("from", "", "window start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "window end date (YYYY-MM-DD)")
	cmd.Flags().Float64("min-confidence", 0.5, "minimum pairing confidence")
	cmd.Flags().Int("max-results", 50, "maximum candidates to show")
	cmd.Flags().Bool("confirm", false, "interactively confirm suggested pairings")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	accountID, _ := cmd.Flags().GetString("account")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	confirm, _ := cmd.Flags().GetBool("confirm")

	window, err := parseWindow(fromStr, toStr)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	txns, err := store.GetUnreconciledTransactions(ctx, accountID, window)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	entries, err := store.GetPendingEntries(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	if len(txns) == 0 || len(entries) == 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf(
			"Nada a conciliar: %d transações, %d lançamentos pendentes.", len(txns), len(entries))))
		return nil
	}

	result := pairing.Search(txns, entries, pairing.SearchOptions{
		MinConfidence: minConfidence,
		MaxResults:    maxResults,
	})

	printCandidates(result)

	if confirm {
		prompter := cli.NewPrompter(os.Stdin, os.Stdout)
		return confirmCandidates(ctx, store, prompter, result.Candidates)
	}
	return nil
}

func parseWindow(fromStr, toStr string) (service.DateRange, error) {
	var window service.DateRange
	if fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return window, fmt.Errorf("invalid --from date %q: %w", fromStr, err)
		}
		window.Start = from
	}
	if toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return window, fmt.Errorf("invalid --to date %q: %w", toStr, err)
		}
		window.End = to
	}
	return window, nil
}

func printCandidates(result pairing.SearchResult) {
	fmt.Println(cli.FormatTitle("Sugestões de conciliação"))

	if len(result.Candidates) == 0 {
		fmt.Println(cli.FormatWarning("Nenhum par acima do limite de confiança."))
		return
	}

	for i, c := range result.Candidates {
		fmt.Printf("%2d. [%s] %s  confiança %s\n", i+1,
			cli.FormatTier(c.Tier()),
			cli.BoldStyle.Render(fmt.Sprintf("%d pts", c.Points)),
			cli.FormatScore(c.Score))
		fmt.Printf("    Banco:  %s  %s  %s\n",
			c.Transaction.PostedAt.Format("02/01/2006"),
			cli.FormatAmount(c.Transaction.Amount),
			c.Transaction.Memo)
		fmt.Printf("    Diário: %s  %s  %s (%s)\n",
			c.Entry.Date.Format("02/01/2006"),
			cli.FormatAmount(c.Entry.Amount),
			c.Entry.Description,
			c.Entry.Kind)
		for _, reason := range c.Reasons {
			fmt.Printf("    %s\n", cli.SubtleStyle.Render("• "+reason))
		}
		fmt.Println()
	}

	fmt.Printf("%s  alta: %d  média: %d  baixa: %d\n",
		cli.BoldStyle.Render("Resumo:"),
		result.Summary.High, result.Summary.Medium, result.Summary.Low)
}

// confirmCandidates walks the ranked list asking for confirmation. Each
// transaction and entry is consumed at most once; later candidates touching
// an already-paired record are skipped. Entries that came from a template
// classification feed the decision back into the template's usage counters.
func confirmCandidates(ctx context.Context, store service.Storage, prompter *cli.Prompter, candidates []model.PairingCandidate) error {
	usedTxns := make(map[string]bool)
	usedEntries := make(map[string]bool)
	confirmed := 0

	for _, c := range candidates {
		if usedTxns[c.Transaction.ID] || usedEntries[c.Entry.ID] {
			continue
		}

		question := fmt.Sprintf("Conciliar %q com %q (%s)?",
			c.Transaction.Memo, c.Entry.Description, cli.FormatScore(c.Score))
		ok, err := prompter.Confirm(ctx, question, c.Tier() == model.TierHigh)
		if err != nil {
			return err
		}
		fmt.Println()

		if c.Entry.TemplateID != 0 {
			if err := store.RecordTemplateUse(ctx, c.Entry.TemplateID, ok); err != nil {
				return fmt.Errorf("failed to record template feedback: %w", err)
			}
		}
		if !ok {
			continue
		}

		if err := store.UpdateTransactionState(ctx, c.Transaction.ID, model.StateConfirmed); err != nil {
			return fmt.Errorf("failed to confirm transaction %s: %w", c.Transaction.ID, err)
		}
		if err := store.UpdateEntryStatus(ctx, c.Entry.ID, model.StatusConciliado); err != nil {
			return fmt.Errorf("failed to reconcile entry %s: %w", c.Entry.ID, err)
		}

		usedTxns[c.Transaction.ID] = true
		usedEntries[c.Entry.ID] = true
		confirmed++
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d pares conciliados.", confirmed)))
	return nil
}
