package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/concilia-dev/concilia/internal/cli"
	"github.com/concilia-dev/concilia/internal/matching"
	"github.com/concilia-dev/concilia/internal/model"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage import templates",
		Long: `Import templates drive the automatic classification of imported
transactions: exact pattern, optional regex, fuzzy fallback.`,
	}

	cmd.AddCommand(templatesListCmd())
	cmd.AddCommand(templatesAddCmd())
	cmd.AddCommand(templatesTestCmd())
	cmd.AddCommand(templatesOptimizeCmd())

	return cmd
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all import templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			templates, err := store.GetAllTemplates(ctx)
			if err != nil {
				return fmt.Errorf("failed to load templates: %w", err)
			}

			if len(templates) == 0 {
				fmt.Println(cli.FormatInfo("Nenhum template cadastrado. Use 'concilia templates add'."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Templates de importação"))
			header := fmt.Sprintf("%-4s %-24s %-24s %-12s %6s %5s %8s %s",
				"ID", "Nome", "Padrão", "Categoria", "Conf.", "Usos", "Sucesso", "Ativo")
			fmt.Println(cli.TableHeaderStyle.Render(header))

			for _, t := range templates {
				active := cli.SuccessStyle.Render("sim")
				if !t.Active {
					active = cli.SubtleStyle.Render("não")
				}
				fmt.Printf("%-4d %-24s %-24s %-12s %5.2f %5d %7.0f%% %s\n",
					t.ID, truncate(t.Name, 24), truncate(t.Pattern, 24), truncate(t.Category, 12),
					t.MinConfidence, t.UseCount, t.SuccessRate*100, active)
			}
			return nil
		},
	}
}

func templatesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new import template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			name, _ := cmd.Flags().GetString("name")
			pattern, _ := cmd.Flags().GetString("pattern")
			regex, _ := cmd.Flags().GetString("regex")
			category, _ := cmd.Flags().GetString("category")
			minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			tmpl := &model.ImportTemplate{
				Name:          name,
				Pattern:       pattern,
				Regex:         regex,
				Category:      category,
				MinConfidence: minConfidence,
				Active:        true,
			}
			if err := store.CreateTemplate(ctx, tmpl); err != nil {
				return fmt.Errorf("failed to create template: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Template %d criado: %s", tmpl.ID, tmpl.Name)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "template name (required)")
	cmd.Flags().String("pattern", "", "exact-match pattern (required)")
	cmd.Flags().String("regex", "", "optional regex, applied case-insensitively")
	cmd.Flags().String("category", "", "accounting category for draft entries")
	cmd.Flags().Float64("min-confidence", 0.7, "fuzzy-stage confidence threshold")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pattern")

	return cmd
}

func templatesTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <template-id>",
		Short: "Test a template against recent transactions",
		Long: `Run one template's exact, regex and fuzzy stages over the memos of
recently imported transactions and report the hit rate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			accountID, _ := cmd.Flags().GetString("account")
			limit, _ := cmd.Flags().GetInt("limit")

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid template ID %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			tmpl, err := store.GetTemplate(ctx, id)
			if err != nil {
				return err
			}

			txns, err := store.GetRecentTransactions(ctx, accountID, limit)
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}
			if len(txns) == 0 {
				fmt.Println(cli.FormatWarning("Nenhuma transação recente para testar."))
				return nil
			}

			samples := make([]string, 0, len(txns))
			for _, txn := range txns {
				samples = append(samples, txn.Memo)
			}

			report, err := matching.TestTemplate(*tmpl, samples)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("Teste do template %q", tmpl.Name)))
			fmt.Printf("  Amostras:  %d\n", report.Matches+report.Misses)
			fmt.Printf("  Acertos:   %s\n", cli.SuccessStyle.Render(fmt.Sprintf("%d", report.Matches)))
			fmt.Printf("  Erros:     %s\n", cli.WarningStyle.Render(fmt.Sprintf("%d", report.Misses)))
			fmt.Printf("  Taxa:      %s\n", cli.FormatScore(report.HitRate))

			if len(report.ExampleMisses) > 0 {
				fmt.Println(cli.SubtitleStyle.Render("Exemplos de erro:"))
				for _, miss := range report.ExampleMisses {
					fmt.Printf("  %s\n    %s\n",
						truncate(miss.Description, 60),
						cli.SubtleStyle.Render(miss.Reason))
				}
			}
			return nil
		},
	}

	cmd.Flags().String("account", "", "account whose recent transactions to sample (required)")
	cmd.Flags().Int("limit", 100, "number of recent transactions to sample")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func templatesOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Suggest template improvements",
		Long:  `Scan the active template set for low-performing or misconfigured templates.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			engine, err := initMatchEngine(ctx, store)
			if err != nil {
				return err
			}

			hints := engine.SuggestOptimizations()
			scanned := len(engine.Templates())
			if len(hints) == 0 {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf(
					"%d templates ativos analisados, nenhuma melhoria sugerida.", scanned)))
				return nil
			}

			fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("%d templates ativos analisados", scanned)))

			fmt.Println(cli.FormatTitle("Sugestões de otimização"))
			for _, hint := range hints {
				fmt.Printf("  [%s] %s (#%d)\n    %s\n",
					priorityLabel(hint.Priority),
					cli.BoldStyle.Render(hint.TemplateName),
					hint.TemplateID,
					hint.Message)
			}
			return nil
		},
	}
}

func priorityLabel(p matching.Priority) string {
	switch p {
	case matching.PriorityHigh:
		return cli.ErrorStyle.Render(p.String())
	case matching.PriorityMedium:
		return cli.WarningStyle.Render(p.String())
	default:
		return cli.SubtleStyle.Render(p.String())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
