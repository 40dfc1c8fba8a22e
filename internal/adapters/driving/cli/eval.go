package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/normativa/internal/core/domain"
)

var (
	evalGold     string
	evalOut      string
	evalLimit    int
	evalK        int
	evalProvider string
	evalModel    string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate answers against a gold question set",
	Long: `Asks every question of a JSONL gold file through the grounded path and
writes one CSV row per question with the answer, an exact-match flag and the
latency.

Each gold line is a JSON object with "q" or "question", "a" or
"expected_answer", and optionally "refs" or "expected_doc".`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalGold, "gold", "", "JSONL gold file (required)")
	evalCmd.Flags().StringVarP(&evalOut, "out", "o", "results.csv", "CSV results file")
	evalCmd.Flags().IntVarP(&evalLimit, "limit", "n", 0, "evaluate at most this many questions (0 = all)")
	evalCmd.Flags().IntVar(&evalK, "k", 0, "chunks to retrieve (default from retrieval.k)")
	evalCmd.Flags().StringVarP(&evalProvider, "provider", "p", "", "generation provider (default from llm.provider)")
	evalCmd.Flags().StringVarP(&evalModel, "model", "m", "", "model override")
	_ = evalCmd.MarkFlagRequired("gold")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := wireServices(ctx); err != nil {
		return err
	}
	if evalService == nil {
		return errors.New("eval service not configured")
	}
	if err := loadIndex(ctx); err != nil {
		return err
	}

	gold, err := os.Open(evalGold)
	if err != nil {
		return fmt.Errorf("open gold file: %w", err)
	}
	defer gold.Close()

	out, err := os.Create(evalOut)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	k := evalK
	if k <= 0 {
		k = currentSettings().Retrieval.K
	}

	summary, runErr := evalService.Run(ctx, gold, out, domain.EvalOptions{
		Limit:    evalLimit,
		K:        k,
		Provider: evalProvider,
		Model:    evalModel,
	})
	if err := out.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("write results file: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("eval failed: %w", runErr)
	}

	s := styles.DefaultStyles()
	cmd.Printf("%s %d/%d exact matches (%.1f%%)\n",
		s.Title.Render("Evaluation:"), summary.Matches, summary.Total, summary.MatchRate()*100)
	cmd.Printf("Results written to %s\n", evalOut)
	return nil
}
