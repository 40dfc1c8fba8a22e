package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/normativa/internal/adapters/driving/tui"
	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/normativa/internal/core/domain"
)

var (
	askK        int
	askProvider string
	askModel    string
	askNoRAG    bool
	askSources  bool
	askJSON     bool
)

// Terminal seams replaced in tests.
var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readQuestion    = tui.ReadQuestion
)

const promptHeader = "Pregunta sobre la normativa"

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the regulations",
	Long: `Retrieves the chunks most relevant to the question and asks the configured
provider to answer from them, citing the documents used. The answer says so
when the regulations do not cover the question.

Without a question argument, an interactive prompt opens on a terminal and
the question is read from standard input otherwise.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askK, "k", 0, "chunks to retrieve (default from retrieval.k)")
	askCmd.Flags().StringVarP(&askProvider, "provider", "p", "", "generation provider (default from llm.provider)")
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model override")
	askCmd.Flags().BoolVar(&askNoRAG, "no-rag", false, "answer without retrieval")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the retrieved sources")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := wireServices(ctx); err != nil {
		return err
	}
	if askService == nil {
		return errors.New("ask service not configured")
	}

	question, err := resolveQuestion(ctx, cmd, args)
	if err != nil {
		return err
	}

	if !askNoRAG {
		if err := loadIndex(ctx); err != nil {
			return err
		}
	}

	k := askK
	if k <= 0 {
		k = currentSettings().Retrieval.K
	}

	resp, err := askService.Ask(ctx, domain.AskRequest{
		Question:    question,
		K:           k,
		UseRAG:      !askNoRAG,
		Provider:    askProvider,
		Model:       askModel,
		ShowSources: askSources,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, resp)
	}
	renderAnswer(cmd.OutOrStdout(), resp, styles.DefaultStyles())
	return nil
}

// resolveQuestion takes the question from args, the interactive prompt, or stdin.
func resolveQuestion(ctx context.Context, cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	if stdinIsTerminal() {
		q, err := readQuestion(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), promptHeader)
		if errors.Is(err, tui.ErrCancelled) {
			return "", errors.New("no question given")
		}
		return q, err
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read question from stdin: %w", err)
	}
	q := strings.TrimSpace(string(data))
	if q == "" {
		return "", errors.New("no question given")
	}
	return q, nil
}

func outputAskJSON(cmd *cobra.Command, resp *domain.AskResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func renderAnswer(w io.Writer, resp *domain.AskResponse, s *styles.Styles) {
	var b strings.Builder

	b.WriteString(s.Answer.Render(resp.Answer))
	b.WriteString("\n")

	meta := resp.Provider
	if resp.Model != "" {
		meta += " (" + resp.Model + ")"
	}
	if resp.RAG {
		meta += ", grounded"
	} else {
		meta += ", no retrieval"
	}
	b.WriteString(s.Muted.Render(meta))
	b.WriteString("\n")

	if len(resp.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Section.Render("Sources"))
		b.WriteString("\n")
		for i, src := range resp.Sources {
			title := src.Title
			if src.Page != nil {
				title = fmt.Sprintf("%s, p. %d", title, *src.Page)
			}
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, s.Source.Render(title))
			if src.URL != "" {
				fmt.Fprintf(&b, "      %s\n", src.URL)
			}
			if src.Snippet != "" {
				fmt.Fprintf(&b, "      %s\n", s.Muted.Render(src.Snippet))
			}
		}
	}

	_, _ = io.WriteString(w, b.String())
}
