package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/normativa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/normativa/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the chunk table from the catalog",
	Long: `Reads the catalog CSV, resolves every record to a file in the raw directory,
extracts and chunks its text, and atomically replaces the chunk table.

Documents that cannot be resolved, need OCR, or have an unsupported format are
listed in the report and do not stop the run. Scanned documents are stored as
OCR placeholders. The previous table is kept only when the run yields no chunk
at all.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := wireServices(cmd.Context()); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	report, err := ingestService.Run(cmd.Context())
	if report != nil {
		renderIngestReport(cmd.OutOrStdout(), report, styles.DefaultStyles())
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

// issueSections lists report sections in display order.
var issueSections = []struct {
	kind  domain.IssueKind
	title string
}{
	{domain.IssueUnresolved, "Missing documents"},
	{domain.IssueOCRRequired, "Require OCR"},
	{domain.IssueUnsupported, "Unsupported files"},
	{domain.IssueUnreadable, "Unreadable pages"},
	{domain.IssueExtraction, "Extraction failures"},
	{domain.IssueDuplicateDoc, "Duplicate doc_id"},
}

func renderIngestReport(w io.Writer, report *domain.IngestReport, s *styles.Styles) {
	var b strings.Builder

	b.WriteString(s.Title.Render("Ingestion report"))
	b.WriteString("\n")
	if report.Run.ID != "" {
		fmt.Fprintf(&b, "  Run:        %s\n", s.Muted.Render(report.Run.ID))
	}
	fmt.Fprintf(&b, "  Documents:  %d in catalog, %d processed\n", report.Documents, report.Processed)
	fmt.Fprintf(&b, "  Chunks:     %d -> %s", report.Chunks, report.TablePath)
	if report.Run.OCRCount > 0 {
		fmt.Fprintf(&b, " (%d OCR placeholders)", report.Run.OCRCount)
	}
	b.WriteString("\n")

	for _, section := range issueSections {
		issues := report.IssuesOf(section.kind)
		if len(issues) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(s.Section.Render(fmt.Sprintf("%s (%d)", section.title, len(issues))))
		b.WriteString("\n")
		for _, issue := range issues {
			b.WriteString("  - ")
			b.WriteString(s.Warning.Render(issueLabel(issue)))
			if issue.Detail != "" {
				b.WriteString(" ")
				b.WriteString(s.Muted.Render(issue.Detail))
			}
			b.WriteString("\n")
		}
	}

	if len(report.Issues) == 0 {
		b.WriteString("\n")
		b.WriteString(s.Success.Render("All documents ingested."))
		b.WriteString("\n")
	}

	_, _ = io.WriteString(w, b.String())
}

func issueLabel(issue domain.Issue) string {
	label := issue.DocID
	if label == "" {
		label = "(no doc_id)"
	}
	if issue.Title != "" {
		label += " " + issue.Title
	}
	if issue.Path != "" {
		label += " [" + issue.Path + "]"
	}
	return label
}
